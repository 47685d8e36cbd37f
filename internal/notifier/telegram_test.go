package notifier

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"StockSentry/internal/model"
)

func testNotifier(srv *httptest.Server) *TelegramNotifier {
	return &TelegramNotifier{
		BotToken: "token",
		ChatID:   "chat",
		APIBase:  srv.URL,
		Client:   srv.Client(),
	}
}

func TestSend(t *testing.T) {
	var gotPath string
	var gotPayload map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		body, _ := io.ReadAll(r.Body)
		json.Unmarshal(body, &gotPayload)
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	if err := testNotifier(srv).Send("hello"); err != nil {
		t.Fatalf("send: %v", err)
	}
	if gotPath != "/bottoken/sendMessage" {
		t.Errorf("path = %s", gotPath)
	}
	if gotPayload["chat_id"] != "chat" || gotPayload["text"] != "hello" {
		t.Errorf("payload = %v", gotPayload)
	}
}

func TestSend_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	if err := testNotifier(srv).Send("hello"); err == nil {
		t.Fatal("expected error for non-200 response")
	}
}

func TestSendMediaGroup(t *testing.T) {
	var gotFiles int
	var gotMedia []inputMedia
	var gotChatID string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("parse multipart: %v", err)
		}
		gotFiles = len(r.MultipartForm.File)
		gotChatID = r.FormValue("chat_id")
		json.Unmarshal([]byte(r.FormValue("media")), &gotMedia)
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	photos := [][]byte{[]byte("png1"), []byte("png2"), []byte("png3")}
	if err := testNotifier(srv).SendMediaGroup(context.Background(), "caption", photos); err != nil {
		t.Fatalf("send media group: %v", err)
	}

	if gotFiles != 3 {
		t.Errorf("attached %d files, want 3", gotFiles)
	}
	if gotChatID != "chat" {
		t.Errorf("chat_id = %q", gotChatID)
	}
	if len(gotMedia) != 3 {
		t.Fatalf("media entries = %d, want 3", len(gotMedia))
	}
	if gotMedia[0].Caption != "caption" || gotMedia[1].Caption != "" {
		t.Error("caption must be on the first photo only")
	}
	for i, m := range gotMedia {
		if m.Type != "photo" || !strings.HasPrefix(m.Media, "attach://") {
			t.Errorf("media[%d] = %+v", i, m)
		}
	}
}

func TestSendMediaGroup_RejectsOversizedBatch(t *testing.T) {
	photos := make([][]byte, model.BatchSize+1)
	for i := range photos {
		photos[i] = []byte("png")
	}
	tn := &TelegramNotifier{BotToken: "token", ChatID: "chat", Client: http.DefaultClient}
	if err := tn.SendMediaGroup(context.Background(), "c", photos); err == nil {
		t.Fatal("expected error for batch above the attachment cap")
	}
}

func TestFlushBatch(t *testing.T) {
	var gotMedia []inputMedia
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r.ParseMultipartForm(1 << 20)
		json.Unmarshal([]byte(r.FormValue("media")), &gotMedia)
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	batch := &model.Batch{}
	batch.Add(model.Hit{Symbol: "TSLA", Signal: model.SignalBuy, PNG: []byte("png")})
	batch.Add(model.Hit{Symbol: "AAPL", Signal: model.SignalSell, PNG: []byte("png")})

	if err := testNotifier(srv).FlushBatch(context.Background(), batch); err != nil {
		t.Fatalf("flush batch: %v", err)
	}
	if len(gotMedia) != 2 {
		t.Fatalf("media entries = %d, want 2", len(gotMedia))
	}
	if !strings.Contains(gotMedia[0].Caption, "TSLA") || !strings.Contains(gotMedia[0].Caption, "AAPL") {
		t.Errorf("caption missing symbols: %q", gotMedia[0].Caption)
	}
}

func TestNotifyNoSignals(t *testing.T) {
	var gotPayload map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		json.Unmarshal(body, &gotPayload)
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	if err := testNotifier(srv).NotifyNoSignals(context.Background()); err != nil {
		t.Fatalf("notify: %v", err)
	}
	if !strings.Contains(gotPayload["text"], "No Buy/Sell signals") {
		t.Errorf("text = %q", gotPayload["text"])
	}
}
