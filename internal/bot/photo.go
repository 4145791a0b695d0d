package bot

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"fitplan/internal/ai"
)

// Telegram bots may download files up to 20 MB.
const maxPhotoBytes = 20 << 20

// handlePhoto analyses the largest size of an uploaded photo.
func (t *TelegramBot) handlePhoto(ctx context.Context, message *tgbotapi.Message) {
	chatID := message.Chat.ID
	photo := message.Photo[len(message.Photo)-1]

	t.send(chatID, "🔍 Analysing your photo...")

	fileURL, err := t.bot.GetFileDirectURL(photo.FileID)
	if err != nil {
		t.logger.Errorw("Failed to get photo URL", "error", withoutURL(err), "file_id", photo.FileID)
		t.send(chatID, "Sorry, I couldn't fetch that photo. Please try again.")
		return
	}

	data, err := t.download(ctx, fileURL)
	if err != nil {
		t.logger.Errorw("Failed to download photo", "error", err, "file_id", photo.FileID)
		t.send(chatID, "Sorry, I couldn't fetch that photo. Please try again.")
		return
	}

	info := ai.InspectImage(data, path.Base(fileURL))
	t.send(chatID, formatAnalysis(t.analyze(ctx, data, info)))
}

// analyze never fails: an unconfigured or failing provider yields the sample
// analysis.
func (t *TelegramBot) analyze(ctx context.Context, data []byte, info ai.ImageInfo) *ai.Analysis {
	if !t.ai.Configured() {
		return ai.MockAnalysis(info.Width, info.Height)
	}

	ctx, cancel := context.WithTimeout(ctx, t.aiTimeout)
	defer cancel()

	analysis, err := t.ai.AnalyzeImage(ctx, data, info.MimeType)
	if err != nil {
		t.logger.Errorw("AI image analysis failed", "error", err, "source", t.ai.Source())
		return ai.MockAnalysis(info.Width, info.Height)
	}
	analysis.Width, analysis.Height = info.Width, info.Height
	return analysis
}

// download fetches a file URL. The URL embeds the bot token, so it is kept
// out of returned errors.
func (t *TelegramBot) download(ctx context.Context, fileURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fileURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build download request: %w", withoutURL(err))
	}
	resp, err := t.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download file: %w", withoutURL(err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return io.ReadAll(io.LimitReader(resp.Body, maxPhotoBytes))
}

// withoutURL drops the request URL from *url.Error values.
func withoutURL(err error) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return fmt.Errorf("%s request: %w", urlErr.Op, urlErr.Err)
	}
	return err
}
