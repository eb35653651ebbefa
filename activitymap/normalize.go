// Package activitymap converts auth activity events into a transport-agnostic
// shape for downstream feeds, queues, and audit tables.
package activitymap

import (
	"strings"
	"time"

	auth "github.com/pitchside/academy-auth"
)

// Metadata keys attached to normalized records.
const (
	// MetadataKeyActorType stores the actor kind taken from auth.ActorRef.Type.
	MetadataKeyActorType = "actor_type"
	// MetadataKeyFromStatus stores the source account status for lifecycle transitions.
	MetadataKeyFromStatus = "from_status"
	// MetadataKeyToStatus stores the target account status for lifecycle transitions.
	MetadataKeyToStatus = "to_status"
)

// DefaultChannel groups auth events in downstream activity feeds.
const DefaultChannel = "academy.auth"

// fallbackObjectType covers events where the subject kind is unknown, e.g.
// operator transitions recorded without an actor reference.
const fallbackObjectType = "identity"

// systemActorID marks machine-initiated events such as expiry sweeps.
const systemActorID = "system"

// Normalized is the shape handed to downstream systems.
type Normalized struct {
	ActorID    string         `json:"actor_id"`
	Verb       string         `json:"verb"`
	ObjectType string         `json:"object_type,omitempty"`
	ObjectID   string         `json:"object_id,omitempty"`
	Channel    string         `json:"channel,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty"`
	OccurredAt time.Time      `json:"occurred_at"`
}

// Normalizer converts auth activity events into Normalized records.
type Normalizer struct {
	channel       string
	objectType    string
	actorFallback string
	objectID      func(auth.ActivityEvent) string
}

// Option tunes a Normalizer.
type Option func(*Normalizer)

// NewNormalizer builds a Normalizer with feed defaults applied.
func NewNormalizer(opts ...Option) *Normalizer {
	n := &Normalizer{
		channel:       DefaultChannel,
		actorFallback: systemActorID,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(n)
		}
	}
	return n
}

// WithChannel overrides the feed channel.
func WithChannel(channel string) Option {
	return func(n *Normalizer) {
		n.channel = strings.TrimSpace(channel)
	}
}

// WithObjectType pins the object type instead of deriving it per event.
func WithObjectType(objectType string) Option {
	return func(n *Normalizer) {
		n.objectType = strings.TrimSpace(objectType)
	}
}

// WithObjectIDResolver overrides object-id extraction from the event.
func WithObjectIDResolver(resolver func(auth.ActivityEvent) string) Option {
	return func(n *Normalizer) {
		n.objectID = resolver
	}
}

// WithActorFallback sets the actor id used when the event carries neither an
// actor nor an identity.
func WithActorFallback(actorID string) Option {
	return func(n *Normalizer) {
		n.actorFallback = strings.TrimSpace(actorID)
	}
}

// Normalize converts one event. The source event is never mutated.
func (n *Normalizer) Normalize(event auth.ActivityEvent) Normalized {
	occurredAt := event.OccurredAt
	if occurredAt.IsZero() {
		occurredAt = time.Now().UTC()
	}

	return Normalized{
		ActorID:    n.actorID(event),
		Verb:       string(event.EventType),
		ObjectType: n.resolveObjectType(event),
		ObjectID:   n.resolveObjectID(event),
		Channel:    n.channel,
		Metadata:   normalizeMetadata(event),
		OccurredAt: occurredAt,
	}
}

// Normalize converts a single event with a default Normalizer.
func Normalize(event auth.ActivityEvent, opts ...Option) Normalized {
	return NewNormalizer(opts...).Normalize(event)
}

func (n *Normalizer) actorID(event auth.ActivityEvent) string {
	if id := strings.TrimSpace(event.Actor.ID); id != "" {
		return id
	}
	if id := strings.TrimSpace(event.IdentityID); id != "" {
		return id
	}
	return n.actorFallback
}

// resolveObjectType uses the actor kind when the event is self-service (the
// actor is the subject): login, registration, and verification events then
// come out typed as "user" or "academy". Operator actions on someone else's
// account fall back to the generic identity type.
func (n *Normalizer) resolveObjectType(event auth.ActivityEvent) string {
	if n.objectType != "" {
		return n.objectType
	}

	actorType := strings.TrimSpace(event.Actor.Type)
	if actorType != "" && strings.TrimSpace(event.Actor.ID) == strings.TrimSpace(event.IdentityID) {
		return actorType
	}
	return fallbackObjectType
}

func (n *Normalizer) resolveObjectID(event auth.ActivityEvent) string {
	if n.objectID != nil {
		return strings.TrimSpace(n.objectID(event))
	}
	return strings.TrimSpace(event.IdentityID)
}

func normalizeMetadata(event auth.ActivityEvent) map[string]any {
	actorType := strings.TrimSpace(event.Actor.Type)
	if len(event.Metadata) == 0 && actorType == "" && event.FromStatus == "" && event.ToStatus == "" {
		return nil
	}

	metadata := make(map[string]any, len(event.Metadata)+3)
	for k, v := range event.Metadata {
		metadata[k] = v
	}

	// Source metadata wins over the derived actor type; status transitions
	// always reflect the event.
	if actorType != "" {
		if _, exists := metadata[MetadataKeyActorType]; !exists {
			metadata[MetadataKeyActorType] = actorType
		}
	}
	if event.FromStatus != "" {
		metadata[MetadataKeyFromStatus] = string(event.FromStatus)
	}
	if event.ToStatus != "" {
		metadata[MetadataKeyToStatus] = string(event.ToStatus)
	}

	return metadata
}
