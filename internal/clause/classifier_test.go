package clause

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"legalai-assistant/internal/model"
)

func TestExtract_DecimalClause(t *testing.T) {
	clauses := Extract("12.2 This policy shall terminate upon breach.")

	require.Len(t, clauses, 1)
	assert.Equal(t, "12.2", clauses[0].Number)
	assert.Equal(t, model.ClauseCritical, clauses[0].Type)
	assert.Equal(t, 0.8, clauses[0].Confidence)
}

func TestExtract_NoStructuralMarkers(t *testing.T) {
	clauses := Extract("This is plain prose without any clause markers at all, just sentences.")
	assert.Empty(t, clauses)
}

func TestExtract_EmptyText(t *testing.T) {
	assert.Empty(t, Extract(""))
	assert.Empty(t, Extract("   \n\t  "))
}

func TestExtract_AllPatternKinds(t *testing.T) {
	text := strings.Join([]string{
		"1.1 The insurer provides full coverage for water damage events.",
		"Section 4 Either party may request mediation before litigation starts.",
		"Article IV The policyholder retains the right to a full refund here.",
		"(a) Claims must be submitted within thirty days of the incident date.",
		"Paragraph 7 Renewal terms are negotiated annually by both parties involved.",
	}, "\n")

	clauses := Extract(text)
	require.Len(t, clauses, 5)

	numbers := make([]string, len(clauses))
	for i, cl := range clauses {
		numbers[i] = cl.Number
	}
	// Detection order follows pattern priority, not text order.
	assert.Equal(t, []string{"1.1", "Section 4", "Article IV", "(a)", "Paragraph 7"}, numbers)
}

func TestExtract_ShortMatchesAreNoise(t *testing.T) {
	clauses := Extract("3.1 Too short. 3.2 This clause is comfortably longer than twenty characters.")

	require.Len(t, clauses, 1)
	assert.Equal(t, "3.2", clauses[0].Number)
}

func TestExtract_OverlongBodyRejected(t *testing.T) {
	body := "A" + strings.Repeat("very long clause text ", 30) + "ends here."
	require.Greater(t, len(body), 500)

	clauses := Extract("5.5 " + body)
	for _, cl := range clauses {
		assert.LessOrEqual(t, len(cl.Text), 500)
		assert.GreaterOrEqual(t, len(cl.Text), 20)
	}
}

func TestExtract_DuplicatesCollapsed(t *testing.T) {
	line := "2.1 The insurer shall reimburse all covered medical expenses promptly."
	clauses := Extract(line + "\n" + line)

	require.Len(t, clauses, 1)
}

func TestExtract_CapAtFifteen(t *testing.T) {
	var sb strings.Builder
	for i := 1; i <= 25; i++ {
		fmt.Fprintf(&sb, "%d.%d The party number %d agrees to these specific obligations fully.\n", i, i, i)
	}

	clauses := Extract(sb.String())
	assert.Len(t, clauses, 15)
	for _, cl := range clauses {
		assert.GreaterOrEqual(t, len(cl.Text), 20)
		assert.LessOrEqual(t, len(cl.Text), 500)
	}
}

func TestClassify_CriticalBeatsSupportive(t *testing.T) {
	got := Classify("Coverage is void and subject to penalty upon breach of this benefit clause.")
	assert.Equal(t, model.ClauseCritical, got)
}

func TestClassify_Supportive(t *testing.T) {
	got := Classify("The insured is entitled to a full refund of the premium.")
	assert.Equal(t, model.ClauseSupportive, got)
}

func TestClassify_Neutral(t *testing.T) {
	got := Classify("This agreement is governed by the laws of the state of Delaware.")
	assert.Equal(t, model.ClauseNeutral, got)
}
