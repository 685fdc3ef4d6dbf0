package feedgen

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yousefh409/llm-censorship/pkg/types"
)

func post(id string, action types.Action, reply string) types.ClassifiedPost {
	v := types.Verdict{Action: action, Reasoning: "r"}
	if reply != "" {
		v.ReplyContent = &reply
	}
	return types.ClassifiedPost{
		Post:    types.PostRecord{PostID: id, Content: "content-" + id},
		Verdict: v,
	}
}

func ids(out []types.OutputPost) []string {
	var s []string
	for _, p := range out {
		s = append(s, p.PostID)
	}
	return s
}

func TestCanonicalVariantRules(t *testing.T) {
	posts := []types.ClassifiedPost{
		post("1", types.ActionAllow, ""),
		post("2", types.ActionDelete, ""),
		post("3", types.ActionDistract, "nice park"),
	}
	policy := types.PolicyV1()

	control := Synthesize(posts, Control(), policy)
	assert.Equal(t, []string{"2", "3"}, ids(control))

	censored := Synthesize(posts, Censored(), policy)
	assert.Equal(t, []string{"3"}, ids(censored))

	amplified := Synthesize(posts, CensoredAmplified(), policy)
	require.Equal(t, []string{"3"}, ids(amplified))
	assert.Equal(t, "nice park", amplified[0].ReplyContent)

	// No reply ever attaches outside the amplified variant.
	for _, p := range append(control, censored...) {
		assert.Empty(t, p.ReplyContent)
	}
}

func TestErrorVerdictsExcludedEverywhere(t *testing.T) {
	posts := []types.ClassifiedPost{
		{Post: types.PostRecord{PostID: "1"}, Verdict: types.ErrorVerdict("Failed to parse JSON: not json")},
		post("2", types.ActionPushback, "counter"),
	}
	policy := types.PolicyV1()

	for _, v := range CanonicalVariants() {
		out := Synthesize(posts, v, policy)
		assert.Equal(t, []string{"2"}, ids(out), "variant %s", v.Name)
	}
}

func TestOrderPreserved(t *testing.T) {
	var posts []types.ClassifiedPost
	actions := []types.Action{
		types.ActionDistract, types.ActionAllow, types.ActionDelete,
		types.ActionPushback, types.ActionDistract, types.ActionAllow,
		types.ActionDelete, types.ActionPushback,
	}
	for i, a := range actions {
		posts = append(posts, post(string(rune('a'+i)), a, ""))
	}

	for _, v := range CanonicalVariants() {
		out := Synthesize(posts, v, types.PolicyV1())
		// Output must be a subsequence of the input ordering.
		i := 0
		for _, entry := range out {
			for i < len(posts) && posts[i].Post.PostID != entry.PostID {
				i++
			}
			require.Less(t, i, len(posts), "variant %s emitted %s out of order", v.Name, entry.PostID)
			i++
		}
	}
}

func TestSynthesisIdempotent(t *testing.T) {
	posts := []types.ClassifiedPost{
		post("1", types.ActionPushback, "counter"),
		post("2", types.ActionDistract, "look over there"),
		post("3", types.ActionDelete, ""),
	}
	for _, v := range CanonicalVariants() {
		first := Synthesize(posts, v, types.PolicyV1())
		second := Synthesize(posts, v, types.PolicyV1())
		assert.Equal(t, first, second)
	}
}

func TestReplyAttachmentRules(t *testing.T) {
	policy := types.PolicyV1()

	// Reply-bearing action with a null reply: tolerated, nothing attached.
	noReply := Synthesize([]types.ClassifiedPost{post("1", types.ActionPushback, "")}, CensoredAmplified(), policy)
	require.Len(t, noReply, 1)
	assert.Empty(t, noReply[0].ReplyContent)

	// Non-reply-bearing action keeps its reply detached even if one exists.
	drifted := post("2", types.Action("QUARANTINE"), "stray reply")
	out := Synthesize([]types.ClassifiedPost{drifted}, CensoredAmplified(), policy)
	require.Len(t, out, 1)
	assert.Empty(t, out[0].ReplyContent)
}

func TestPolicyV2ReplyBearing(t *testing.T) {
	policy := types.PolicyV2()
	posts := []types.ClassifiedPost{
		post("1", types.ActionDownrank, "suppressive counter"),
		post("2", types.ActionPushback, "old-taxonomy reply"), // drifted under v2
	}

	out := Synthesize(posts, CensoredAmplified(), policy)
	require.Len(t, out, 2)
	assert.Equal(t, "suppressive counter", out[0].ReplyContent)
	assert.Empty(t, out[1].ReplyContent)
}

func TestTranslatedContentPreferred(t *testing.T) {
	p := types.ClassifiedPost{
		Post: types.PostRecord{
			PostID:            "1",
			Content:           "original",
			ContentTranslated: "translated",
		},
		Verdict: types.Verdict{Action: types.ActionDistract},
	}
	out := Synthesize([]types.ClassifiedPost{p}, Control(), types.PolicyV1())
	require.Len(t, out, 1)
	assert.Equal(t, "translated", out[0].OpContent)

	p.Post.ContentTranslated = ""
	out = Synthesize([]types.ClassifiedPost{p}, Control(), types.PolicyV1())
	assert.Equal(t, "original", out[0].OpContent)
}

func TestIndependentCounts(t *testing.T) {
	posts := []types.ClassifiedPost{
		post("1", types.ActionAllow, ""),
		post("2", types.ActionDelete, ""),
		post("3", types.ActionDistract, "x"),
		post("4", types.ActionPushback, "y"),
	}
	policy := types.PolicyV1()

	assert.Len(t, Synthesize(posts, Control(), policy), 3)
	assert.Len(t, Synthesize(posts, Censored(), policy), 2)
	assert.Len(t, Synthesize(posts, CensoredAmplified(), policy), 2)
}
