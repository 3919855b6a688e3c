package agent

import (
	"context"
	"strings"
	"testing"

	"Okto-Agent/internal/action"
	xerrors "Okto-Agent/internal/errors"
	"Okto-Agent/internal/journal"
	"Okto-Agent/internal/observability/alerting"
)

type stubStore struct {
	entries []journal.Entry
}

func (s *stubStore) Append(_ context.Context, entry journal.Entry) error {
	s.entries = append([]journal.Entry{entry}, s.entries...)
	return nil
}

func (s *stubStore) ListRecent(_ context.Context, limit int) ([]journal.Entry, error) {
	if limit <= 0 || limit > len(s.entries) {
		limit = len(s.entries)
	}
	return s.entries[:limit], nil
}

func (s *stubStore) Close() error { return nil }

type stubDispatcher struct {
	events []alerting.Event
}

func (s *stubDispatcher) Notify(_ context.Context, event alerting.Event) error {
	s.events = append(s.events, event)
	return nil
}

func testActions(result *action.Result) []*action.Action {
	transfer := &action.Action{
		Name:    "OKTO_TRANSFER",
		Similes: []string{"TRANSFER", "OKTO_TRANSFER"},
		Validate: func(msg action.Message) bool {
			return strings.Contains(msg.Text, "send")
		},
		Handler: func(ctx context.Context, msg action.Message) *action.Result {
			return result
		},
	}
	wallets := &action.Action{
		Name:    "OKTO_GET_WALLETS",
		Similes: []string{"WALLETS", "OKTO_GET_WALLETS"},
		Validate: func(msg action.Message) bool {
			return strings.TrimSpace(msg.Text) != ""
		},
		Handler: func(ctx context.Context, msg action.Message) *action.Result {
			return &action.Result{Success: true, Response: "okto get wallets successful", Text: "ok"}
		},
	}
	return []*action.Action{transfer, wallets}
}

func TestExecuteRoutesByExplicitCapability(t *testing.T) {
	ag := New(testActions(&action.Result{Success: true, Response: "okto transfer successful", OrderID: "o-1"}))

	resp, err := ag.Execute(context.Background(), Request{Capability: "transfer", Text: "send 1 SOL"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Capability != "OKTO_TRANSFER" || resp.Result.OrderID != "o-1" {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestExecuteRoutesBySimileInText(t *testing.T) {
	ag := New(testActions(&action.Result{Success: true, Response: "okto transfer successful"}))

	resp, err := ag.Execute(context.Background(), Request{Text: "show me my okto wallets"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Capability != "OKTO_GET_WALLETS" {
		t.Fatalf("unexpected capability: %s", resp.Capability)
	}
}

func TestExecuteFallsBackToApplicability(t *testing.T) {
	actions := testActions(&action.Result{Success: true, Response: "okto transfer successful"})
	// 第二个能力对任意非空消息适用，保证回退路由有明确次序。
	ag := New(actions)

	resp, err := ag.Execute(context.Background(), Request{Text: "send 1 SOL to winner.sol"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Capability != "OKTO_TRANSFER" {
		t.Fatalf("fallback should honour registration order, got %s", resp.Capability)
	}
}

func TestExecuteRejectsEmptyText(t *testing.T) {
	ag := New(testActions(&action.Result{}))
	if _, err := ag.Execute(context.Background(), Request{Text: "   "}); !xerrors.IsCode(err, xerrors.CodeEmptyQuery) {
		t.Fatalf("expected EMPTY_QUERY, got %v", err)
	}
}

func TestExecuteRejectsUnknownCapability(t *testing.T) {
	ag := New(testActions(&action.Result{}))
	if _, err := ag.Execute(context.Background(), Request{Capability: "OKTO_MINT", Text: "mint"}); !xerrors.IsCode(err, xerrors.CodeNotFound) {
		t.Fatalf("expected NOT_FOUND, got %v", err)
	}
}

func TestExecuteRejectsInapplicableMessage(t *testing.T) {
	ag := New(testActions(&action.Result{}))
	_, err := ag.Execute(context.Background(), Request{Capability: "OKTO_TRANSFER", Text: "what is my balance"})
	if !xerrors.IsCode(err, xerrors.CodeInvalidArgument) {
		t.Fatalf("expected INVALID_ARGUMENT, got %v", err)
	}
}

func TestExecuteRecordsJournalEntry(t *testing.T) {
	store := &stubStore{}
	ag := New(testActions(&action.Result{Success: true, Response: "okto transfer successful", OrderID: "o-2"}),
		WithJournal(store))

	if _, err := ag.Execute(context.Background(), Request{Capability: "OKTO_TRANSFER", Text: "send 1 SOL"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(store.entries) != 1 {
		t.Fatalf("expected one journal entry, got %d", len(store.entries))
	}
	entry := store.entries[0]
	if entry.ID == "" || entry.Capability != "OKTO_TRANSFER" || entry.OrderID != "o-2" || !entry.Success {
		t.Fatalf("unexpected entry: %+v", entry)
	}

	entries, err := ag.History(context.Background(), 10)
	if err != nil || len(entries) != 1 {
		t.Fatalf("unexpected history: %v %v", entries, err)
	}
}

func TestExecuteAlertsOnVendorFailure(t *testing.T) {
	alerts := &stubDispatcher{}
	ag := New(testActions(&action.Result{Success: false, Response: "okto transfer failed",
		FailureCode: xerrors.CodeVendorFailure}), WithAlerts(alerts))

	if _, err := ag.Execute(context.Background(), Request{Capability: "OKTO_TRANSFER", Text: "send 1 SOL"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(alerts.events) != 1 {
		t.Fatalf("expected one alert, got %d", len(alerts.events))
	}
	event := alerts.events[0]
	if event.Code != xerrors.CodeVendorFailure || event.Capability != "OKTO_TRANSFER" {
		t.Fatalf("unexpected event: %+v", event)
	}
	if event.Severity != xerrors.AttributesOf(xerrors.CodeVendorFailure).Severity {
		t.Fatalf("event severity must follow the code registry, got %s", event.Severity)
	}
}

func TestExecuteDoesNotAlertOnUserError(t *testing.T) {
	alerts := &stubDispatcher{}
	ag := New(testActions(&action.Result{Success: false, Response: "invalid transfer details",
		FailureCode: xerrors.CodeSchemaValidation}), WithAlerts(alerts))

	if _, err := ag.Execute(context.Background(), Request{Capability: "OKTO_TRANSFER", Text: "send 1 SOL"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(alerts.events) != 0 {
		t.Fatalf("user errors must not alert: %+v", alerts.events)
	}
}

// 抽取服务失败的响应文本同样以 failed 结尾，告警判定必须依据错误码
// 而不是响应措辞。
func TestExecuteDoesNotAlertOnExtractionFailure(t *testing.T) {
	alerts := &stubDispatcher{}
	ag := New(testActions(&action.Result{Success: false, Response: "extraction failed",
		FailureCode: xerrors.CodeExtractionFailure}), WithAlerts(alerts))

	if _, err := ag.Execute(context.Background(), Request{Capability: "OKTO_TRANSFER", Text: "send 1 SOL"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(alerts.events) != 0 {
		t.Fatalf("extraction failures must not alert: %+v", alerts.events)
	}
}

func TestExecuteDoesNotAlertWithoutFailureCode(t *testing.T) {
	alerts := &stubDispatcher{}
	ag := New(testActions(&action.Result{Success: false, Response: "okto swap unavailable"}),
		WithAlerts(alerts))

	if _, err := ag.Execute(context.Background(), Request{Capability: "OKTO_TRANSFER", Text: "send 1 SOL"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(alerts.events) != 0 {
		t.Fatalf("results without a failure code must not alert: %+v", alerts.events)
	}
}

func TestHistoryWithoutJournal(t *testing.T) {
	ag := New(testActions(&action.Result{}))
	if _, err := ag.History(context.Background(), 5); !xerrors.IsCode(err, xerrors.CodeInitializationFailure) {
		t.Fatalf("expected INITIALIZATION_FAILURE, got %v", err)
	}
}

func TestCapabilities(t *testing.T) {
	ag := New(testActions(&action.Result{}))
	descriptors := ag.Capabilities()
	if len(descriptors) != 2 || descriptors[0].Name != "OKTO_TRANSFER" {
		t.Fatalf("unexpected descriptors: %+v", descriptors)
	}
}
