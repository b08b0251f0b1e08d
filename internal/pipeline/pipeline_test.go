package pipeline

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func h2nStages() []StageSpec {
	return []StageSpec{
		{Name: "highpass", Options: []Option{{"f", "20"}, {"t", "q"}, {"width", "0.7"}}},
		{Name: "equalizer", Options: []Option{{"f", "75"}, {"t", "q"}, {"w", "1"}, {"g", "5"}}},
		{Name: "equalizer", Options: []Option{{"f", "350"}, {"t", "q"}, {"w", "1"}, {"g", "-5"}}},
		{Name: "bass", Options: []Option{{"g", "3"}, {"f", "90"}, {"t", "q"}, {"w", "0.7"}}},
		{Name: "loudnorm", Options: []Option{{"I", "-14"}, {"TP", "-1.5"}, {"LRA", "11"}}},
	}
}

// TestBuildPipeline_Render verifies stage order and option order survive rendering.
func TestBuildPipeline_Render(t *testing.T) {
	p, err := BuildPipeline(h2nStages())
	require.NoError(t, err)

	want := "highpass=f=20:t=q:width=0.7," +
		"equalizer=f=75:t=q:w=1:g=5," +
		"equalizer=f=350:t=q:w=1:g=-5," +
		"bass=g=3:f=90:t=q:w=0.7," +
		"loudnorm=I=-14:TP=-1.5:LRA=11"
	assert.Equal(t, want, p.Render())
}

// TestBuildPipeline_CopiesStages verifies the pipeline does not alias caller slices.
func TestBuildPipeline_CopiesStages(t *testing.T) {
	stages := h2nStages()
	p, err := BuildPipeline(stages)
	require.NoError(t, err)

	stages[0].Options[0].Value = "9999"

	if diff := cmp.Diff(h2nStages(), p.GetStages()); diff != "" {
		t.Errorf("pipeline stages changed with caller slice (-want +got):\n%s", diff)
	}
}

func TestBuildPipeline_Errors(t *testing.T) {
	tests := []struct {
		name   string
		stages []StageSpec
		target error
	}{
		{"empty", nil, ErrEmptyPipeline},
		{"empty_name", []StageSpec{{Name: ""}}, ErrInvalidStage},
		{"bad_name", []StageSpec{{Name: "high pass"}}, ErrInvalidStage},
		{"empty_key", []StageSpec{{Name: "volume", Options: []Option{{"", "1"}}}}, ErrInvalidStage},
		{"duplicate_key", []StageSpec{{Name: "volume", Options: []Option{{"volume", "1"}, {"volume", "2"}}}}, ErrInvalidStage},
		{"loudnorm_not_last", []StageSpec{{Name: "loudnorm"}, {Name: "highpass"}}, ErrInvalidStage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := BuildPipeline(tt.stages)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.target)
		})
	}
}

func TestStageSpec_RenderWithoutOptions(t *testing.T) {
	assert.Equal(t, "anull", StageSpec{Name: "anull"}.Render())
}

func TestStageSpec_Get(t *testing.T) {
	s := h2nStages()[1]

	v, ok := s.Get("g")
	assert.True(t, ok)
	assert.Equal(t, "5", v)

	_, ok = s.Get("missing")
	assert.False(t, ok)
}

func TestTypeOf(t *testing.T) {
	tests := []struct {
		name   string
		want   StageType
		linear bool
	}{
		{"highpass", StageHighPass, true},
		{"equalizer", StageEqualizer, true},
		{"bass", StageBassShelf, true},
		{"lowshelf", StageBassShelf, true},
		{"acompressor", StageCompressor, false},
		{"loudnorm", StageLoudNorm, false},
		{"aresample", StageGeneric, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TypeOf(tt.name)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.linear, got.Linear())
		})
	}
}

func TestStageType_Linear(t *testing.T) {
	var linear []string
	for _, s := range h2nStages() {
		if s.Type().Linear() {
			linear = append(linear, s.Name)
		}
	}
	assert.Equal(t, []string{"highpass", "equalizer", "equalizer", "bass"}, linear)
}

// TestEscape verifies both quoting levels are applied to special characters.
func TestEscape(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"20", "20"},
		{"-18dB", "-18dB"},
		{"a:b", `a\\:b`},
		{"x,y", `x\,y`},
		{"it's", `it\\\'s`},
		{"[in]", `\[in\]`},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Escape(tt.in))
		})
	}
}
