package playback

import "testing"

func TestNextIndex_Sequential(t *testing.T) {
	tests := []struct {
		name    string
		length  int
		current int
		repeat  RepeatMode
		want    int
		wantOK  bool
	}{
		{"advance", 3, 0, RepeatOff, 1, true},
		{"halt at end", 3, 2, RepeatOff, 2, false},
		{"wrap with repeat all", 3, 2, RepeatAll, 0, true},
		{"repeat one still advances on explicit next", 3, 0, RepeatOne, 1, true},
		{"empty queue", 0, 0, RepeatAll, 0, false},
		{"fresh queue starts at zero", 3, -1, RepeatOff, 0, true},
		{"single track halts", 1, 0, RepeatOff, 0, false},
		{"single track wraps with repeat all", 1, 0, RepeatAll, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := nextIndex(tt.length, tt.current, false, tt.repeat, nil)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("nextIndex() = (%d, %v), want (%d, %v)", got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestNextIndex_ShuffleNeverRepeatsCurrent(t *testing.T) {
	draws := []int{2, 2, 2, 1}
	intn := func(int) int {
		d := draws[0]
		draws = draws[1:]
		return d
	}
	got, ok := nextIndex(4, 2, true, RepeatOff, intn)
	if !ok || got != 1 {
		t.Errorf("nextIndex() = (%d, %v), want (1, true)", got, ok)
	}
}

func TestNextIndex_ShuffleSingleTrack(t *testing.T) {
	got, ok := nextIndex(1, 0, true, RepeatOff, func(int) int { return 0 })
	if !ok || got != 0 {
		t.Errorf("nextIndex() = (%d, %v), want (0, true)", got, ok)
	}
}

func TestPrevIndex(t *testing.T) {
	tests := []struct {
		name    string
		length  int
		current int
		want    int
		wantOK  bool
	}{
		{"step back", 3, 2, 1, true},
		{"wrap from first to last", 3, 0, 2, true},
		{"empty queue", 0, 0, 0, false},
		{"no current yet", 3, -1, 0, true},
		{"current beyond shrunken queue", 2, 5, 1, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := prevIndex(tt.length, tt.current)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("prevIndex() = (%d, %v), want (%d, %v)", got, ok, tt.want, tt.wantOK)
			}
		})
	}
}
