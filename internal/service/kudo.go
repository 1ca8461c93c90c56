// Package service contains the business logic layer of the application.
//
// THE THREE-LAYER ARCHITECTURE:
//
//	Handler (HTTP layer)     → parses requests, writes responses
//	Service (Business layer) → validates, enforces rules, orchestrates
//	Repository (Data layer)  → reads/writes to the database
//
// Services accept plain Go values (never *http.Request) and return
// apperror values (never status codes). The handler layer does the mapping.
//
// DEPENDENCY INJECTION:
// Services take repository interfaces, not *sqlite.DB. The same service runs
// over SQLite, Postgres, or the in-memory store, and tests pass fakes.
package service

import (
	"context"
	"fmt"
	"html"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"

	"github.com/sakif/kudos-board/internal/apperror"
	"github.com/sakif/kudos-board/internal/model"
	"github.com/sakif/kudos-board/internal/repository"
)

// Message length limits, counted in characters (runes) of the visible text.
const (
	MinMessageLength = 10
	MaxMessageLength = 1000
)

// newlines folds CRLF and lone CR into LF, as the HTML tokenizer does, so
// multi-line messages compare equal after sanitizing.
var newlines = strings.NewReplacer("\r\n", "\n", "\r", "\n")

// KudoRecorder receives business events for metrics.
// metrics.Collector implements it; nil disables recording.
type KudoRecorder interface {
	KudoCreated(category model.Category)
	KudoHidden()
}

type noopRecorder struct{}

func (noopRecorder) KudoCreated(model.Category) {}
func (noopRecorder) KudoHidden()                {}

// KudoService handles business logic for kudos.
type KudoService struct {
	kudos    repository.KudoRepository
	policy   *bluemonday.Policy
	recorder KudoRecorder
	logger   *slog.Logger
}

// NewKudoService creates a KudoService. recorder may be nil.
func NewKudoService(kudos repository.KudoRepository, recorder KudoRecorder, logger *slog.Logger) *KudoService {
	if recorder == nil {
		recorder = noopRecorder{}
	}
	return &KudoService{
		kudos: kudos,
		// StrictPolicy allows no tags at all. It is only used to detect
		// markup; messages are never rewritten.
		policy:   bluemonday.StrictPolicy(),
		recorder: recorder,
		logger:   logger,
	}
}

// Create validates in and stores it as a kudo from senderID.
//
// senderID is the authenticated caller. It is a separate argument, never
// part of the client payload, so a client cannot post in someone else's name.
//
// Rules are checked in a fixed order and the first failure is returned:
//  1. a recipient is given
//  2. the category is one of the fixed set
//  3. the message contains no markup
//  4. the message has at least MinMessageLength characters
//  5. the message has at most MaxMessageLength characters
//  6. the recipient is not the sender
//
// The message is stored as typed, minus surrounding whitespace and with
// line endings normalized to \n.
func (s *KudoService) Create(ctx context.Context, senderID string, in model.NewKudo) (*model.Kudo, error) {
	if senderID == "" {
		return nil, apperror.Unauthorized("Unauthorized")
	}

	in.ToUserID = strings.TrimSpace(in.ToUserID)
	in.Message = newlines.Replace(strings.TrimSpace(in.Message))

	if in.ToUserID == "" {
		return nil, apperror.ValidationFailed("toUserId", "Please select a colleague")
	}
	if !in.Category.Valid() {
		return nil, apperror.ValidationFailed("category",
			"Category must be one of Teamwork, Innovation, Helpful, Other")
	}

	if s.containsMarkup(in.Message) {
		return nil, apperror.ValidationFailed("message", "Message must not contain HTML")
	}

	n := utf8.RuneCountInString(in.Message)
	if n < MinMessageLength {
		return nil, apperror.ValidationFailed("message",
			fmt.Sprintf("Message must be at least %d characters", MinMessageLength))
	}
	if n > MaxMessageLength {
		return nil, apperror.ValidationFailed("message",
			fmt.Sprintf("Message must be %d characters or less", MaxMessageLength))
	}
	if in.ToUserID == senderID {
		return nil, apperror.ValidationFailed("toUserId", "You cannot send kudos to yourself")
	}

	k, err := s.kudos.CreateKudo(ctx, senderID, in)
	if err != nil {
		s.logger.Error("failed to create kudo",
			slog.String("from", senderID),
			slog.String("to", in.ToUserID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("creating kudo: %w", err)
	}

	s.recorder.KudoCreated(k.Category)
	s.logger.Info("kudo created",
		slog.Int64("id", k.ID),
		slog.String("from", k.FromUserID),
		slog.String("to", k.ToUserID),
		slog.String("category", string(k.Category)),
	)

	return k, nil
}

// Feed returns the visible kudos, newest first.
func (s *KudoService) Feed(ctx context.Context) ([]model.KudoWithUser, error) {
	kudos, err := s.kudos.ListKudos(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing kudos: %w", err)
	}
	return kudos, nil
}

// Hide moderates a kudo out of the feed. Any authenticated user may hide any
// kudo. Unknown ids and repeated hides succeed silently.
func (s *KudoService) Hide(ctx context.Context, callerID string, id int64) error {
	if callerID == "" {
		return apperror.Unauthorized("Unauthorized")
	}
	if id <= 0 {
		return apperror.ValidationFailed("id", "Invalid kudo id")
	}

	if err := s.kudos.HideKudo(ctx, id); err != nil {
		return fmt.Errorf("hiding kudo %d: %w", id, err)
	}

	s.recorder.KudoHidden()
	s.logger.Info("kudo hidden",
		slog.Int64("id", id),
		slog.String("by", callerID),
	)
	return nil
}

// containsMarkup reports whether the strict policy would change msg, i.e.
// whether any part of it parses as a tag or comment.
//
// The policy HTML-escapes the text it keeps ("&" becomes "&amp;"), so its
// output is decoded before comparing. "Tom & Jerry" and "Thanks <3" pass;
// "<b>hi</b>" and "a<b and c>d" do not, since the latter reads as a <b> tag.
func (s *KudoService) containsMarkup(msg string) bool {
	return html.UnescapeString(s.policy.Sanitize(msg)) != msg
}
