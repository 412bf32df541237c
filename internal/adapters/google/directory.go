// Package google implements the directory port on the Google Workspace Admin SDK.
package google

import (
	"context"
	"errors"
	"net/http"

	admin "google.golang.org/api/admin/directory/v1"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/denhac/membership-sync/internal/ports/out/directory"
	"github.com/denhac/membership-sync/internal/ports/out/gateway"
)

const memberRole = "MEMBER"

// Directory is a directory.Service backed by the Admin SDK groups API.
type Directory struct {
	svc *admin.Service
}

func New(ctx context.Context, opts ...option.ClientOption) (*Directory, error) {
	opts = append([]option.ClientOption{
		option.WithScopes(admin.AdminDirectoryGroupScope, admin.AdminDirectoryGroupMemberScope),
	}, opts...)
	svc, err := admin.NewService(ctx, opts...)
	if err != nil {
		return nil, err
	}
	return &Directory{svc: svc}, nil
}

func (d *Directory) GroupsForDomain(ctx context.Context, domain string, progress directory.ProgressFunc) ([]directory.Group, error) {
	return paginate(ctx, progress, func(ctx context.Context, token string) ([]directory.Group, string, error) {
		call := d.svc.Groups.List().Domain(domain).Context(ctx)
		if token != "" {
			call = call.PageToken(token)
		}
		res, err := call.Do()
		if err != nil {
			return nil, "", wrap("groups.list", err)
		}
		out := make([]directory.Group, 0, len(res.Groups))
		for _, g := range res.Groups {
			out = append(out, directory.Group{Email: g.Email, Name: g.Name})
		}
		return out, res.NextPageToken, nil
	})
}

func (d *Directory) MembersOf(ctx context.Context, group string, progress directory.ProgressFunc) ([]string, error) {
	return paginate(ctx, progress, func(ctx context.Context, token string) ([]string, string, error) {
		call := d.svc.Members.List(group).Context(ctx)
		if token != "" {
			call = call.PageToken(token)
		}
		res, err := call.Do()
		if err != nil {
			return nil, "", wrap("members.list", err)
		}
		out := make([]string, 0, len(res.Members))
		for _, m := range res.Members {
			out = append(out, m.Email)
		}
		return out, res.NextPageToken, nil
	})
}

func (d *Directory) AddMember(ctx context.Context, group, email string) error {
	_, err := d.svc.Members.Insert(group, &admin.Member{Email: email, Role: memberRole}).Context(ctx).Do()
	if err == nil {
		return nil
	}
	if statusOf(err) == http.StatusConflict {
		return directory.ErrAlreadyMember
	}
	return wrap("members.insert", err)
}

func (d *Directory) RemoveMember(ctx context.Context, group, email string) error {
	err := d.svc.Members.Delete(group, email).Context(ctx).Do()
	if err == nil {
		return nil
	}
	if statusOf(err) == http.StatusNotFound {
		return directory.ErrNotMember
	}
	return wrap("members.delete", err)
}

// paginate drains a token-paged listing. The estimate stays one step ahead of done
// until the last page, since the total page count is unknown.
func paginate[T any](ctx context.Context, progress directory.ProgressFunc, fetch func(ctx context.Context, token string) ([]T, string, error)) ([]T, error) {
	var (
		out   []T
		token string
		steps int
	)
	for {
		page, next, err := fetch(ctx, token)
		if err != nil {
			return nil, err
		}
		out = append(out, page...)
		steps++
		if next == "" {
			if progress != nil {
				progress(steps, steps)
			}
			return out, nil
		}
		if progress != nil {
			progress(steps, steps+1)
		}
		token = next
	}
}

func statusOf(err error) int {
	var ge *googleapi.Error
	if errors.As(err, &ge) {
		return ge.Code
	}
	return 0
}

func wrap(op string, err error) error {
	if _, ok := gateway.As(err); ok {
		return err
	}
	ge := &gateway.Error{Gateway: "google", Op: op, Err: err}
	var ae *googleapi.Error
	if errors.As(err, &ae) {
		ge.Status = ae.Code
		ge.Payload = map[string]any{"code": ae.Code, "message": ae.Message}
	}
	return ge
}
