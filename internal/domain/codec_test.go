package domain

import (
	"errors"
	"testing"
)

func TestDecodeEvent_RoundTripKeepsType(t *testing.T) {
	t.Parallel()

	in := SubscriptionUpdated{Subscription: SubscriptionFacts{ID: 7, CustomerID: 42, Status: StatusActive}}
	typ, body, err := EncodeEvent(in)
	if err != nil {
		t.Fatalf("EncodeEvent err=%v", err)
	}
	if typ != TypeSubscriptionUpdated {
		t.Fatalf("type=%q, want %q", typ, TypeSubscriptionUpdated)
	}
	out, err := DecodeEvent(typ, body)
	if err != nil {
		t.Fatalf("DecodeEvent err=%v", err)
	}
	got, ok := out.(SubscriptionUpdated)
	if !ok {
		t.Fatalf("decoded %T, want SubscriptionUpdated", out)
	}
	if got != in {
		t.Fatalf("got=%+v want=%+v", got, in)
	}
}

func TestDecodeEvent_UnknownType(t *testing.T) {
	t.Parallel()

	_, err := DecodeEvent("NotAThing", []byte(`{}`))
	if !errors.Is(err, ErrUnknownEventType) {
		t.Fatalf("err=%v, want ErrUnknownEventType", err)
	}
}

func TestNormalizeCardNumber(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"00123": "123",
		" 123 ": "123",
		"000":   "0",
		"":      "",
		"4501":  "4501",
	}
	for in, want := range cases {
		if got := NormalizeCardNumber(in); got != want {
			t.Fatalf("NormalizeCardNumber(%q)=%q, want %q", in, got, want)
		}
	}
}

func TestSplitCardNumbers_DedupesNormalizedNumbers(t *testing.T) {
	t.Parallel()

	got := SplitCardNumbers("00123, 123,456,,")
	if len(got) != 2 || got[0] != "123" || got[1] != "456" {
		t.Fatalf("got=%v", got)
	}
}

func TestCustomerOf_WaiverAcceptedHasNoCustomer(t *testing.T) {
	t.Parallel()

	if _, ok := CustomerOf(WaiverAccepted{Waiver: Waiver{ID: "w-1"}}); ok {
		t.Fatalf("expected no customer for WaiverAccepted")
	}
	id, ok := CustomerOf(MembershipActivated{CustomerID: 5})
	if !ok || id != 5 {
		t.Fatalf("id=%v ok=%v", id, ok)
	}
}
