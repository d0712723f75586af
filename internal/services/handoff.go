package services

import (
	"context"
	"encoding/json"
	"fmt"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/finbridge/finlit-backend/internal/apperr"
	rediscache "github.com/finbridge/finlit-backend/internal/clients/redis"
	"github.com/finbridge/finlit-backend/internal/logger"
	"github.com/finbridge/finlit-backend/internal/repos"
	"github.com/finbridge/finlit-backend/internal/types"
)

// AssessmentGateCount is how many persisted assessment rows a user needs
// before the assessment agent may hand off to planning. Duplicate-topic
// rows count toward the threshold.
const AssessmentGateCount = 3

// HandoffRouter moves state between agents through the store: Send appends
// a mailbox row, Receive reads the newest row addressed to a component.
// There is no consumption marker; Receive is idempotent and keeps returning
// the same message until a newer one is sent. Older rows stay in storage
// for audit but are invisible.
type HandoffRouter interface {
	Send(ctx context.Context, userID string, from, to types.Component, payload any) (*types.HandoffMessage, error)
	// Receive returns (nil, nil) for an empty mailbox; absence is a normal
	// state for new users, not an error.
	Receive(ctx context.Context, userID string, to types.Component) (*types.HandoffMessage, error)
}

type handoffRouter struct {
	db             *gorm.DB
	log            *logger.Logger
	userRepo       repos.UserRepo
	assessmentRepo repos.AssessmentRepo
	handoffRepo    repos.HandoffRepo
	cache          rediscache.HandoffCache
}

// NewHandoffRouter builds the router. cache may be nil; the store is always
// the source of truth and the cache only short-circuits mailbox reads.
func NewHandoffRouter(db *gorm.DB, baseLog *logger.Logger, userRepo repos.UserRepo, assessmentRepo repos.AssessmentRepo, handoffRepo repos.HandoffRepo, cache rediscache.HandoffCache) HandoffRouter {
	return &handoffRouter{
		db:             db,
		log:            baseLog.With("service", "HandoffRouter"),
		userRepo:       userRepo,
		assessmentRepo: assessmentRepo,
		handoffRepo:    handoffRepo,
		cache:          cache,
	}
}

func (r *handoffRouter) Send(ctx context.Context, userID string, from, to types.Component, payload any) (*types.HandoffMessage, error) {
	if userID == "" {
		return nil, apperr.Validation("missing_user_id", "user_id is required")
	}
	if !from.Valid() || !to.Valid() {
		return nil, apperr.Validation("unknown_component", "unknown component in handoff from %q to %q", from, to)
	}

	// The assessment-to-planning edge is gated on assessment volume.
	if from == types.ComponentAssessment && to == types.ComponentPlanning {
		count, err := r.assessmentRepo.CountByUser(ctx, nil, userID)
		if err != nil {
			return nil, apperr.Store("count_assessments", err)
		}
		if count < AssessmentGateCount {
			return nil, apperr.Precondition(
				"assessment_gate",
				fmt.Sprintf("need at least %d topic assessments before creating your complete learning plan, you currently have %d", AssessmentGateCount, count),
				fmt.Sprintf("Complete %d more assessment(s) first.", AssessmentGateCount-count),
			)
		}
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, apperr.Validation("bad_payload", "handoff payload is not serializable: %v", err)
	}

	if err := r.userRepo.CreateIfAbsent(ctx, nil, userID); err != nil {
		return nil, apperr.Store("create_user", err)
	}

	msg := &types.HandoffMessage{
		UserID:        userID,
		FromComponent: from,
		ToComponent:   to,
		Payload:       datatypes.JSON(raw),
	}
	if err := r.handoffRepo.Append(ctx, nil, msg); err != nil {
		return nil, apperr.Store("append_handoff", err)
	}

	if r.cache != nil {
		if err := r.cache.Put(ctx, msg); err != nil {
			r.log.Warn("mailbox cache write failed", "user_id", userID, "to", to, "error", err)
			// Drop the key rather than risk serving an older message.
			if delErr := r.cache.Invalidate(ctx, userID, to); delErr != nil {
				r.log.Warn("mailbox cache invalidate failed", "user_id", userID, "to", to, "error", delErr)
			}
		}
	}

	r.log.Info("handoff sent", "user_id", userID, "from", from, "to", to)
	return msg, nil
}

func (r *handoffRouter) Receive(ctx context.Context, userID string, to types.Component) (*types.HandoffMessage, error) {
	if userID == "" {
		return nil, apperr.Validation("missing_user_id", "user_id is required")
	}
	if !to.Valid() {
		return nil, apperr.Validation("unknown_component", "unknown component %q", to)
	}

	if r.cache != nil {
		if msg, ok := r.cache.Get(ctx, userID, to); ok {
			return msg, nil
		}
	}

	msg, err := r.handoffRepo.LatestTo(ctx, nil, userID, to)
	if err != nil {
		return nil, apperr.Store("latest_handoff", err)
	}
	if msg != nil && r.cache != nil {
		if err := r.cache.Put(ctx, msg); err != nil {
			r.log.Warn("mailbox cache backfill failed", "user_id", userID, "to", to, "error", err)
		}
	}
	return msg, nil
}

// DecodePayload unmarshals a mailbox payload into the receiver's expected
// schema. The store keeps payloads opaque, so a mismatch surfaces here as a
// validation error on the receiving side.
func DecodePayload(msg *types.HandoffMessage, dst interface{ Validate() error }) error {
	if msg == nil {
		return apperr.NotFound("no_handoff", "no handoff message found", "")
	}
	if err := json.Unmarshal(msg.Payload, dst); err != nil {
		return apperr.Validation("malformed_payload", "handoff payload from %s is malformed: %v", msg.FromComponent, err)
	}
	if err := dst.Validate(); err != nil {
		return apperr.Validation("invalid_payload", "handoff payload from %s is invalid: %v", msg.FromComponent, err)
	}
	return nil
}
