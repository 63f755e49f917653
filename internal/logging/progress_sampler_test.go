package logging

import "testing"

func TestProgressSamplerSequence(t *testing.T) {
	type step struct {
		stage   string
		percent float64
		want    bool
	}
	tests := []struct {
		name   string
		bucket float64
		steps  []step
	}{
		{
			name:   "buckets of ten",
			bucket: 10,
			steps: []step{
				{"transcribe", 0, true},
				{"transcribe", 4, false},
				{"transcribe", 10, true},
				{"transcribe", 19.9, false},
				{"transcribe", 55, true},
				{"transcribe", 100, true},
				{"transcribe", 130, false},
			},
		},
		{
			name:   "stage change resets bucket",
			bucket: 25,
			steps: []step{
				{"transcribe", 60, true},
				{"index", 0, true},
				{"index", 10, false},
				{"index", 30, true},
			},
		},
		{
			name:   "unknown percent",
			bucket: 5,
			steps: []step{
				{"download", -1, true},
				{"download", -1, false},
				{" download ", -1, false},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewProgressSampler(tt.bucket)
			for i, st := range tt.steps {
				if got := s.ShouldLog(st.stage, st.percent); got != st.want {
					t.Fatalf("step %d (%s %.1f): got %v want %v", i, st.stage, st.percent, got, st.want)
				}
			}
		})
	}
}

func TestProgressSamplerDefaults(t *testing.T) {
	if s := NewProgressSampler(0); s.bucketSize != 10 {
		t.Fatalf("bucketSize = %v, want 10", s.bucketSize)
	}
	var nilSampler *ProgressSampler
	if !nilSampler.ShouldLog("x", 1) {
		t.Fatal("nil sampler should always log")
	}
}
