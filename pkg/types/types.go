// Package types defines the core types for the censorship pipeline.
package types

import "time"

// Action is a moderation action assigned to one post by the oracle.
type Action string

const (
	ActionAllow    Action = "ALLOW"
	ActionPushback Action = "PUSHBACK"
	ActionDistract Action = "DISTRACT"
	ActionDelete   Action = "DELETE"
	ActionDownrank Action = "DOWNRANK"

	// ActionError marks a verdict that could not be parsed or validated. It is
	// routable like any other action but excluded from valid-policy statistics.
	ActionError Action = "ERROR"
)

// PolicyVersion is one closed action taxonomy. Two generations of the pipeline
// use different taxonomies; a run is configured with exactly one and they are
// never merged.
type PolicyVersion struct {
	Name         string
	Actions      []Action
	replyBearing map[Action]bool
}

// PolicyV1 is the first-generation taxonomy: PUSHBACK argues against a post,
// DISTRACT derails it.
func PolicyV1() PolicyVersion {
	return PolicyVersion{
		Name:    "v1",
		Actions: []Action{ActionAllow, ActionPushback, ActionDistract, ActionDelete},
		replyBearing: map[Action]bool{
			ActionPushback: true,
			ActionDistract: true,
		},
	}
}

// PolicyV2 is the second-generation taxonomy: PUSHBACK is replaced by
// DOWNRANK.
func PolicyV2() PolicyVersion {
	return PolicyVersion{
		Name:    "v2",
		Actions: []Action{ActionAllow, ActionDownrank, ActionDelete, ActionDistract},
		replyBearing: map[Action]bool{
			ActionDownrank: true,
			ActionDistract: true,
		},
	}
}

// PolicyByName resolves a policy version from its configuration name.
func PolicyByName(name string) (PolicyVersion, bool) {
	switch name {
	case "v1", "":
		return PolicyV1(), true
	case "v2":
		return PolicyV2(), true
	}
	return PolicyVersion{}, false
}

// Contains reports whether a belongs to this taxonomy's closed set.
func (p PolicyVersion) Contains(a Action) bool {
	for _, act := range p.Actions {
		if act == a {
			return true
		}
	}
	return false
}

// ReplyBearing reports whether a requires an attached counter-message.
func (p PolicyVersion) ReplyBearing(a Action) bool {
	return p.replyBearing[a]
}

// Drifted reports whether a is outside the closed set. ERROR is a known
// sentinel, not drift.
func (p PolicyVersion) Drifted(a Action) bool {
	return a != ActionError && !p.Contains(a)
}

// PostRecord is one immutable input post.
type PostRecord struct {
	PostID            string             `json:"post_id"`
	Content           string             `json:"content"`
	ContentTranslated string             `json:"content_translated,omitempty"`
	ThemeScores       map[string]float64 `json:"theme_scores,omitempty"`
}

// ThemeScore returns the named theme score, 0 when absent.
func (p PostRecord) ThemeScore(theme string) float64 {
	return p.ThemeScores[theme]
}

// Verdict is the validated oracle output for one post.
//
// The parser is open-world: an action string outside the configured taxonomy
// is kept as-is so consumers can surface drift instead of crashing.
type Verdict struct {
	Action       Action  `json:"action"`
	Reasoning    string  `json:"reasoning"`
	ReplyContent *string `json:"reply_content"`
}

// IsError reports whether this verdict is the parse/validation failure
// sentinel.
func (v Verdict) IsError() bool {
	return v.Action == ActionError
}

// Reply returns the reply content, empty when absent.
func (v Verdict) Reply() string {
	if v.ReplyContent == nil {
		return ""
	}
	return *v.ReplyContent
}

// ErrorVerdict builds the sentinel verdict carrying the raw failure detail.
func ErrorVerdict(reasoning string) Verdict {
	return Verdict{Action: ActionError, Reasoning: reasoning, ReplyContent: nil}
}

// ClassifiedPost pairs a post with its verdict and provenance. Created once
// per post per classification pass and never mutated. Persisted verdicts are
// the source of truth for a run; the oracle is not deterministic, so a verdict
// is never re-derivable from the post alone.
type ClassifiedPost struct {
	Post         PostRecord `json:"post"`
	Verdict      Verdict    `json:"verdict"`
	RunID        string     `json:"run_id,omitempty"`
	Batch        string     `json:"batch,omitempty"`
	ClassifiedAt time.Time  `json:"classified_at,omitempty"`
}

// OpContent is the content a derived feed shows for this post: the
// translation when present, the original otherwise.
func (c ClassifiedPost) OpContent() string {
	if c.Post.ContentTranslated != "" {
		return c.Post.ContentTranslated
	}
	return c.Post.Content
}

// OutputPost is one entry of a synthesized feed.
type OutputPost struct {
	PostID       string `json:"post_id"`
	OpContent    string `json:"op_content"`
	ReplyContent string `json:"reply_content,omitempty"`
}
