package pubsub

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Channels are "<topic>:<key>". The topic maps to a Kafka topic and the key
// to the Kafka message key; with Redis the whole string is the channel.
const (
	TopicPosts    = "birdup-posts"
	TopicFollows  = "birdup-follows"
	TopicComments = "birdup-comments"
)

// Topics lists every topic the service publishes to.
var Topics = []string{TopicPosts, TopicFollows, TopicComments}

// Event types.
const (
	EventPostCreated    = "post.created"
	EventPostUpdated    = "post.updated"
	EventPostDeleted    = "post.deleted"
	EventCommentCreated = "comment.created"
	EventFollowCreated  = "follow.created"
	EventFollowDeleted  = "follow.deleted"
)

// PostChannel is keyed by author so one author's events stay ordered.
func PostChannel(authorID uint) string {
	return fmt.Sprintf("%s:%d", TopicPosts, authorID)
}

// FollowChannel is keyed by follower.
func FollowChannel(followerID uint) string {
	return fmt.Sprintf("%s:%d", TopicFollows, followerID)
}

// CommentChannel is keyed by post.
func CommentChannel(postID uint) string {
	return fmt.Sprintf("%s:%d", TopicComments, postID)
}

// TopicPattern matches every channel of a topic.
func TopicPattern(topic string) string {
	return topic + ":*"
}

// splitChannel returns the topic and key halves of a channel.
func splitChannel(channel string) (topic, key string, err error) {
	topic, key, ok := strings.Cut(channel, ":")
	if !ok || topic == "" || key == "" {
		return "", "", fmt.Errorf("invalid channel format: %s", channel)
	}
	return topic, key, nil
}

// Event is the envelope for every payload below. Key is the channel the
// event was built for.
type Event struct {
	Type      string          `json:"type"`
	Key       string          `json:"key"`
	Payload   json.RawMessage `json:"payload"`
	Timestamp time.Time       `json:"timestamp"`
}

// NewEvent wraps payload for channel.
func NewEvent(eventType, channel string, payload interface{}) (*Event, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal %s payload: %w", eventType, err)
	}
	return &Event{
		Type:      eventType,
		Key:       channel,
		Payload:   data,
		Timestamp: time.Now().UTC(),
	}, nil
}

// UnmarshalPayload decodes the payload into one of the *Payload types.
func (e *Event) UnmarshalPayload(v interface{}) error {
	return json.Unmarshal(e.Payload, v)
}

// PostPayload describes a post event.
type PostPayload struct {
	PostID   uint  `json:"post_id"`
	AuthorID uint  `json:"author_id"`
	GroupID  *uint `json:"group_id,omitempty"`
}

// FollowPayload describes a follow edge event. Exactly one of AuthorID and
// GroupID is set.
type FollowPayload struct {
	FollowerID uint  `json:"follower_id"`
	AuthorID   *uint `json:"author_id,omitempty"`
	GroupID    *uint `json:"group_id,omitempty"`
}

// CommentPayload describes a comment event.
type CommentPayload struct {
	CommentID uint `json:"comment_id"`
	PostID    uint `json:"post_id"`
	AuthorID  uint `json:"author_id"`
}
