package clarify

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"medclarify/domain"
)

const sampleJSON = `{
  "documentType": "Lab Results",
  "simplifiedSections": [
    {
      "title": "Blood Sugar",
      "original": "HbA1c 6.9% (H)",
      "simplified": "Your average blood sugar over three months is a little high.",
      "confidence": 92,
      "urgency": "important",
      "keyTerms": [{"term": "HbA1c", "definition": "A test showing average blood sugar"}]
    },
    {
      "title": "Kidney Function",
      "original": "eGFR >90",
      "simplified": "Your kidneys are working normally.",
      "confidence": 88,
      "urgency": "normal",
      "keyTerms": []
    }
  ],
  "actionItems": ["Repeat HbA1c in 3 months"],
  "overallSummary": "Most results are normal; blood sugar is slightly elevated.",
  "uncertainties": []
}`

func TestParseTranslation(t *testing.T) {
	r, err := ParseTranslation(sampleJSON)
	require.NoError(t, err)

	assert.Equal(t, "Lab Results", r.DocumentType)
	require.Len(t, r.Sections, 2)
	assert.Equal(t, "Blood Sugar", r.Sections[0].Title)
	assert.Equal(t, "Kidney Function", r.Sections[1].Title, "document order is kept")
	assert.Equal(t, 92, r.Sections[0].Confidence)
	assert.Equal(t, UrgencyImportant, r.Sections[0].Urgency)
	assert.Equal(t, []KeyTerm{{Term: "HbA1c", Definition: "A test showing average blood sugar"}}, r.Sections[0].KeyTerms)
	assert.Equal(t, []string{"Repeat HbA1c in 3 months"}, r.ActionItems)
	assert.NotNil(t, r.Uncertainties)
	assert.Empty(t, r.Uncertainties)
}

func TestParseTranslationStripsFences(t *testing.T) {
	r, err := ParseTranslation("```json\n" + sampleJSON + "\n```")
	require.NoError(t, err)
	assert.Equal(t, "Lab Results", r.DocumentType)
}

func TestParseTranslationOptionalArrays(t *testing.T) {
	r, err := ParseTranslation(`{"documentType":"Prescription","overallSummary":"Take one tablet daily."}`)
	require.NoError(t, err)

	assert.NotNil(t, r.Sections)
	assert.Empty(t, r.Sections)
	assert.NotNil(t, r.ActionItems)
	assert.NotNil(t, r.Uncertainties)
}

func TestParseTranslationMalformed(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"not json", "{not json"},
		{"empty", "   "},
		{"prose", "Here is your translation: the labs look fine."},
		{"array", `[1,2,3]`},
		{"null", `null`},
		{"missing document type", `{"overallSummary":"s"}`},
		{"blank document type", `{"documentType":"  ","overallSummary":"s"}`},
		{"missing summary", `{"documentType":"Lab Results"}`},
		{"section without title", `{"documentType":"x","overallSummary":"s","simplifiedSections":[{"simplified":"y"}]}`},
		{"section without simplified", `{"documentType":"x","overallSummary":"s","simplifiedSections":[{"title":"y"}]}`},
		{"wrong type", `{"documentType":42,"overallSummary":"s"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := ParseTranslation(tt.text)
			assert.Nil(t, r, "no partial result")
			assert.True(t, domain.IsType(err, domain.ErrorTypeMalformedOutput), "got %v", err)
		})
	}
}

func TestParseTranslationNormalizesSections(t *testing.T) {
	text := `{"documentType":"x","overallSummary":"s","simplifiedSections":[
		{"title":"a","simplified":"a","confidence":150,"urgency":"URGENT"},
		{"title":"b","simplified":"b","confidence":-3,"urgency":"critical"},
		{"title":"c","simplified":"c","confidence":"75%"},
		{"title":"d","simplified":"d","confidence":79.6,"urgency":" Important "},
		{"title":"e","simplified":"e","confidence":"high","keyTerms":[{"term":"","definition":"dropped"}]}
	]}`

	r, err := ParseTranslation(text)
	require.NoError(t, err)
	require.Len(t, r.Sections, 5)

	want := []struct {
		confidence int
		urgency    Urgency
	}{
		{100, UrgencyUrgent},
		{0, UrgencyNormal},
		{75, UrgencyNormal},
		{80, UrgencyImportant},
		{0, UrgencyNormal},
	}
	for i, w := range want {
		assert.Equal(t, w.confidence, r.Sections[i].Confidence, "section %d", i)
		assert.Equal(t, w.urgency, r.Sections[i].Urgency, "section %d", i)
		assert.GreaterOrEqual(t, r.Sections[i].Confidence, 0)
		assert.LessOrEqual(t, r.Sections[i].Confidence, 100)
	}
	assert.Empty(t, r.Sections[4].KeyTerms)
}

func TestParseUrgency(t *testing.T) {
	assert.Equal(t, UrgencyUrgent, ParseUrgency("urgent"))
	assert.Equal(t, UrgencyImportant, ParseUrgency("Important"))
	assert.Equal(t, UrgencyNormal, ParseUrgency(""))
	assert.Equal(t, UrgencyNormal, ParseUrgency("normal | important | urgent"))
}

func TestLabels(t *testing.T) {
	assert.Equal(t, "URGENT", UrgencyUrgent.Label())
	assert.Equal(t, "Important", UrgencyImportant.Label())
	assert.Equal(t, "Normal", Urgency("").Label())

	assert.Equal(t, "High Confidence", LevelFor(80).Label())
	assert.Equal(t, "Medium Confidence", LevelFor(79).Label())
	assert.Equal(t, "Medium Confidence", LevelFor(50).Label())
	assert.Equal(t, "Low Confidence - Verify with Doctor", LevelFor(49).Label())
}

func TestClampConfidence(t *testing.T) {
	assert.Equal(t, 0, ClampConfidence(-1))
	assert.Equal(t, 55, ClampConfidence(55))
	assert.Equal(t, 100, ClampConfidence(101))
}

func TestContext(t *testing.T) {
	r, err := ParseTranslation(sampleJSON)
	require.NoError(t, err)

	ctx := r.Context()
	data, err := ctx.JSON()
	require.NoError(t, err)

	var decoded map[string]json.RawMessage
	require.NoError(t, json.Unmarshal([]byte(data), &decoded))
	assert.Len(t, decoded, 4)
	for _, key := range []string{"documentType", "sections", "summary", "actionItems"} {
		assert.Contains(t, decoded, key)
	}
	assert.NotContains(t, decoded, "uncertainties")
}
