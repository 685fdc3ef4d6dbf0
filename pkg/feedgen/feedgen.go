// Package feedgen derives alternate feeds from one classified dataset.
//
// Each canonical variant is an independent pass over the full aggregated set:
// a stable filter on the verdict action plus an optional reply attachment.
// The three passes are not partitions; a post can appear in several variants.
package feedgen

import (
	"github.com/yousefh409/llm-censorship/pkg/types"
)

// Variant is one named derivation rule set. Stateless; constructed once and
// applied many times.
type Variant struct {
	Name string

	// Include decides membership from the action alone.
	Include func(types.Action) bool

	// AttachReply emits the verdict's counter-message for reply-bearing
	// actions.
	AttachReply bool
}

// Control is the baseline feed: every post except those judged harmless
// (ALLOW). Despite the name it models moderation activity, not an unmoderated
// timeline.
func Control() Variant {
	return Variant{
		Name: "control",
		Include: func(a types.Action) bool {
			return a != types.ActionAllow
		},
	}
}

// Censored simulates removal: DELETE posts are gone, ALLOW posts are out of
// scope, nothing is amplified.
func Censored() Variant {
	return Variant{
		Name:    "censored",
		Include: includeCensored,
	}
}

// CensoredAmplified is the censored feed with counter-messages attached to
// reply-bearing actions.
func CensoredAmplified() Variant {
	return Variant{
		Name:        "censored_plus_amplified",
		Include:     includeCensored,
		AttachReply: true,
	}
}

func includeCensored(a types.Action) bool {
	return a != types.ActionDelete && a != types.ActionAllow
}

// CanonicalVariants returns the three required variants in report order.
func CanonicalVariants() []Variant {
	return []Variant{Control(), Censored(), CensoredAmplified()}
}

// Synthesize applies one variant to the aggregated set, preserving relative
// order. ERROR verdicts are excluded from every variant; they stay visible in
// the aggregated log only. A reply is attached only when the variant asks for
// it, the action is reply-bearing under the policy, and the verdict actually
// carries one.
func Synthesize(posts []types.ClassifiedPost, v Variant, policy types.PolicyVersion) []types.OutputPost {
	out := make([]types.OutputPost, 0, len(posts))
	for _, post := range posts {
		if post.Verdict.IsError() {
			continue
		}
		if !v.Include(post.Verdict.Action) {
			continue
		}

		entry := types.OutputPost{
			PostID:    post.Post.PostID,
			OpContent: post.OpContent(),
		}
		if v.AttachReply && policy.ReplyBearing(post.Verdict.Action) && post.Verdict.Reply() != "" {
			entry.ReplyContent = post.Verdict.Reply()
		}
		out = append(out, entry)
	}
	return out
}
