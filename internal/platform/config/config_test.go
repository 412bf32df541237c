package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("SLACK_CHANNELS", "board:C0BOARD,laser:C0LASER")
	t.Setenv("EQUIPMENT_PLANS", "12:laser")

	c, err := Load()
	if err != nil {
		t.Fatalf("Load err=%v", err)
	}
	if c.StorageBackend != "memory" || c.Port != "8080" || c.JobMaxAttempts != 5 {
		t.Fatalf("unexpected defaults: %+v", c)
	}
	if c.Google.MembersGroup != "members@denhac.org" || len(c.Google.ExcludedGroups) != 2 {
		t.Fatalf("google=%+v", c.Google)
	}
	if c.Slack.Channels["board"] != "C0BOARD" || c.EquipmentPlans[12] != "laser" {
		t.Fatalf("maps not parsed: channels=%v plans=%v", c.Slack.Channels, c.EquipmentPlans)
	}
	if len(c.Slack.IgnoredUserIDs) != 2 || c.Slack.IgnoredUserIDs[1] != "USLACKBOT" {
		t.Fatalf("ignored=%v", c.Slack.IgnoredUserIDs)
	}
}

func TestLoad_PostgresRequiresDSN(t *testing.T) {
	t.Setenv("STORAGE_BACKEND", "postgres")
	t.Setenv("DATABASE_URL", "")

	_, err := Load()
	if err == nil || !strings.Contains(err.Error(), "DATABASE_URL") {
		t.Fatalf("err=%v, want DATABASE_URL error", err)
	}
}

func TestLoad_RejectsUnknownBackend(t *testing.T) {
	t.Setenv("QUEUE_BACKEND", "kafka")

	_, err := Load()
	if err == nil || !strings.Contains(err.Error(), "QUEUE_BACKEND") {
		t.Fatalf("err=%v, want QUEUE_BACKEND error", err)
	}
}

func TestLoad_SlackBackendRequiresToken(t *testing.T) {
	t.Setenv("CHAT_BACKEND", "slack")
	t.Setenv("SLACK_TOKEN", "")

	_, err := Load()
	if err == nil || !strings.Contains(err.Error(), "SLACK_TOKEN") {
		t.Fatalf("err=%v, want SLACK_TOKEN error", err)
	}
}

func TestLoadFlags(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "flags.yaml")
	doc := "flags:\n  keep_members_in_slack_and_email: true\n  need_id_check_gets_added_to_slack_and_email: false\n"
	if err := os.WriteFile(path, []byte(doc), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	flags, err := LoadFlags(path)
	if err != nil {
		t.Fatalf("LoadFlags err=%v", err)
	}
	if !flags.Enabled("keep_members_in_slack_and_email") || flags.Enabled("need_id_check_gets_added_to_slack_and_email") {
		t.Fatalf("flags=%v", flags)
	}

	missing, err := LoadFlags(filepath.Join(dir, "nope.yaml"))
	if err != nil || len(missing) != 0 {
		t.Fatalf("missing file: flags=%v err=%v", missing, err)
	}
	if _, err := ParseFlags([]byte("flags: [1, 2")); err == nil {
		t.Fatalf("expected YAML error")
	}
}

func TestLoad_AlertChannel(t *testing.T) {
	t.Setenv("SLACK_ALERT_CHANNEL", "C0OPS")

	c, err := Load()
	if err != nil {
		t.Fatalf("Load err=%v", err)
	}
	if c.Slack.AlertChannel != "C0OPS" {
		t.Fatalf("alert channel=%q, want C0OPS", c.Slack.AlertChannel)
	}
}
