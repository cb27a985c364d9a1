package bot

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"time"

	"chart-oracle/internal/domain"

	tele "gopkg.in/telebot.v3"
)

const detailButtonUnique = "full_analysis"

type UserRegistrar interface {
	Upsert(ctx context.Context, userID int64, username, fullName string) error
}

type ChartAnalyzer interface {
	Analyze(imageBytes []byte) (domain.AnalysisResult, error)
}

type ForecastComposer interface {
	Compose(ctx context.Context, trend domain.Trend, confidence float64) (string, error)
}

type ImageSaver interface {
	Save(chatID int64, data []byte) (string, error)
}

type fileDownloader interface {
	File(file *tele.File) (io.ReadCloser, error)
}

// Handlers binds incoming Telegram events to the analysis and forecast calls.
// All collaborators are injected; every failure is reported to the chat and
// never escapes the handler.
type Handlers struct {
	registrar UserRegistrar
	analyzer  ChartAnalyzer
	composer  ForecastComposer
	images    ImageSaver
	files     fileDownloader
}

func NewHandlers(
	registrar UserRegistrar,
	analyzer ChartAnalyzer,
	composer ForecastComposer,
	images ImageSaver,
	files fileDownloader,
) *Handlers {
	return &Handlers{
		registrar: registrar,
		analyzer:  analyzer,
		composer:  composer,
		images:    images,
		files:     files,
	}
}

func StartTelegramBot(
	registrar UserRegistrar,
	analyzer ChartAnalyzer,
	composer ForecastComposer,
	images ImageSaver,
) *tele.Bot {
	token := os.Getenv("TELEGRAM_BOT_TOKEN")
	if token == "" {
		log.Println("TELEGRAM_BOT_TOKEN not set, skipping Telegram bot startup")
		return nil
	}
	pref := tele.Settings{
		Token:  token,
		Poller: &tele.LongPoller{Timeout: 10 * time.Second},
	}
	b, err := tele.NewBot(pref)
	if err != nil {
		log.Fatalf("failed to create Telegram bot: %v", err)
	}

	h := NewHandlers(registrar, analyzer, composer, images, b)

	b.Handle("/start", h.HandleStart)
	b.Handle(tele.OnPhoto, h.HandlePhoto)
	b.Handle(&tele.Btn{Unique: detailButtonUnique}, h.HandleDetail)

	log.Println("Telegram bot started")
	go b.Start()
	return b
}

func (h *Handlers) HandleStart(c tele.Context) error {
	sender := c.Sender()
	if sender == nil {
		return c.Send("Unable to detect sender")
	}

	if h.registrar != nil {
		if err := h.registrar.Upsert(context.Background(), c.Chat().ID, sender.Username, senderFullName(sender)); err != nil {
			// Registration is best-effort; a registry outage must not block the chat.
			log.Printf("user registration error for chat %d: %v", c.Chat().ID, err)
		}
	}

	return c.Send(fmt.Sprintf(
		"Hi, %s! 👋\nSend me a chart screenshot and I'll make a forecast! 📈",
		sender.FirstName,
	))
}

func (h *Handlers) HandlePhoto(c tele.Context) error {
	chatID := c.Chat().ID

	if err := c.Send("Analyzing your chart... 🕵️"); err != nil {
		return err
	}

	photo := c.Message().Photo
	if photo == nil {
		return c.Send("I couldn't find a photo in that message.")
	}

	data, err := h.downloadPhoto(photo)
	if err != nil {
		log.Printf("photo download error for chat %d: %v", chatID, err)
		return c.Send(fmt.Sprintf("Error processing image: %v", err))
	}

	if h.images != nil {
		if _, err := h.images.Save(chatID, data); err != nil {
			log.Printf("image store error for chat %d: %v", chatID, err)
			return c.Send(fmt.Sprintf("Error processing image: %v", err))
		}
	}

	result, err := h.analyzer.Analyze(data)
	if err != nil {
		log.Printf("chart analysis error for chat %d: %v", chatID, err)
		return c.Send(fmt.Sprintf("Chart analysis failed: %v", err))
	}

	summary := fmt.Sprintf(
		"🔍 Analysis complete!\n\nForecast for the next 5 minutes: *%s* %s\n🎯 Confidence: %.2f%%.",
		result.Trend, result.Trend.Arrow(), result.Confidence,
	)
	if err := c.Send(summary, tele.ModeMarkdown); err != nil {
		return err
	}

	markup := &tele.ReplyMarkup{}
	btn := markup.Data("Get full analysis 📝", detailButtonUnique, EncodePayload(result))
	markup.Inline(markup.Row(btn))
	return c.Send("Press the button to get the full analysis.", markup)
}

func (h *Handlers) HandleDetail(c tele.Context) error {
	defer func() { _ = c.Respond() }()

	chatID := c.Chat().ID

	result, err := DecodePayload(c.Data())
	if err != nil {
		log.Printf("detail payload error for chat %d: %v", chatID, err)
		return c.Send("That analysis button is no longer valid. Send a new chart to get a fresh forecast.")
	}

	if h.composer == nil {
		return c.Send("Full analysis not configured. Set OPENAI_API_KEY to enable.")
	}

	_ = c.Notify(tele.Typing)

	text, err := h.composer.Compose(context.Background(), result.Trend, result.Confidence)
	if err != nil {
		log.Printf("forecast composition error for chat %d: %v", chatID, err)
		return c.Send("Sorry, the full analysis is unavailable right now. Please try again in a minute.")
	}

	return c.Send(fmt.Sprintf("📊 *Full analysis*:\n\n%s", text), tele.ModeMarkdown)
}

func (h *Handlers) downloadPhoto(photo *tele.Photo) ([]byte, error) {
	rc, err := h.files.File(&photo.File)
	if err != nil {
		return nil, fmt.Errorf("download attachment: %w", err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("read attachment: %w", err)
	}
	return data, nil
}

func senderFullName(u *tele.User) string {
	return strings.TrimSpace(strings.TrimSpace(u.FirstName) + " " + strings.TrimSpace(u.LastName))
}
