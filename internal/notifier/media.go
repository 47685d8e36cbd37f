package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"StockSentry/internal/model"
)

// inputMedia matches the Telegram InputMediaPhoto object.
type inputMedia struct {
	Type      string `json:"type"`
	Media     string `json:"media"`
	Caption   string `json:"caption,omitempty"`
	ParseMode string `json:"parse_mode,omitempty"`
}

// SendMediaGroup sends up to model.BatchSize photos as one message. The
// caption is attached to the first photo, which Telegram displays for the
// whole album.
func (t *TelegramNotifier) SendMediaGroup(ctx context.Context, caption string, photos [][]byte) error {
	if len(photos) == 0 {
		return errors.New("media group is empty")
	}
	if len(photos) > model.BatchSize {
		return fmt.Errorf("media group of %d exceeds cap of %d", len(photos), model.BatchSize)
	}

	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)

	media := make([]inputMedia, len(photos))
	for i, png := range photos {
		name := fmt.Sprintf("photo%d", i)
		part, err := w.CreateFormFile(name, name+".png")
		if err != nil {
			return fmt.Errorf("create form file: %w", err)
		}
		if _, err := part.Write(png); err != nil {
			return fmt.Errorf("write photo: %w", err)
		}
		media[i] = inputMedia{Type: "photo", Media: "attach://" + name}
	}
	media[0].Caption = caption
	media[0].ParseMode = "HTML"

	mediaJSON, err := json.Marshal(media)
	if err != nil {
		return fmt.Errorf("marshal media: %w", err)
	}
	if err := w.WriteField("chat_id", t.ChatID); err != nil {
		return err
	}
	if err := w.WriteField("media", string(mediaJSON)); err != nil {
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, "POST", t.apiURL("sendMediaGroup"), body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	resp, err := t.Client.Do(req)
	if err != nil {
		return fmt.Errorf("send media group: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("telegram API error: status %d, body: %s", resp.StatusCode, string(respBody))
	}
	return nil
}

// SendPhoto sends a single captioned photo.
func (t *TelegramNotifier) SendPhoto(ctx context.Context, caption string, png []byte) error {
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)

	part, err := w.CreateFormFile("photo", "chart.png")
	if err != nil {
		return fmt.Errorf("create form file: %w", err)
	}
	if _, err := part.Write(png); err != nil {
		return fmt.Errorf("write photo: %w", err)
	}
	if err := w.WriteField("chat_id", t.ChatID); err != nil {
		return err
	}
	if err := w.WriteField("caption", caption); err != nil {
		return err
	}
	if err := w.WriteField("parse_mode", "HTML"); err != nil {
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, "POST", t.apiURL("sendPhoto"), body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	resp, err := t.Client.Do(req)
	if err != nil {
		return fmt.Errorf("send photo: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("telegram API error: status %d, body: %s", resp.StatusCode, string(respBody))
	}
	return nil
}

// FlushBatch delivers one batch of hits as a single media-group message.
// Delivery is single-shot: a failed batch is not retried or requeued.
func (t *TelegramNotifier) FlushBatch(ctx context.Context, batch *model.Batch) error {
	lines := make([]string, 0, len(batch.Hits))
	photos := make([][]byte, 0, len(batch.Hits))
	for _, h := range batch.Hits {
		lines = append(lines, fmt.Sprintf("• <b>%s</b>: %s", h.Symbol, h.Signal))
		photos = append(photos, h.PNG)
	}
	caption := "Buy/Sell hits:\n" + strings.Join(lines, "\n")
	return t.SendMediaGroup(ctx, caption, photos)
}

// NotifyNoSignals reports a completed scan that produced no actionable signal.
func (t *TelegramNotifier) NotifyNoSignals(_ context.Context) error {
	return t.Send("No Buy/Sell signals found.")
}
