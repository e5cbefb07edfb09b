package playback

// QueueSource exposes an ordered list of tracks for navigation. The queue
// may change between calls; the engine re-validates indices on every use.
type QueueSource interface {
	Len() int
	Track(i int) (Track, bool)
}

// nextIndex picks the index to play after current. The second return is
// false when the queue halts (end reached without repeat-all).
//
// Shuffle picks a uniformly random index different from current and always
// continues regardless of repeat mode. Sequential advance wraps to zero
// only under repeat-all.
func nextIndex(length, current int, shuffle bool, repeat RepeatMode, intn func(int) int) (int, bool) {
	if length == 0 {
		return 0, false
	}
	if shuffle {
		if length == 1 {
			return 0, true
		}
		next := intn(length)
		for next == current {
			next = intn(length)
		}
		return next, true
	}
	next := current + 1
	if next >= length {
		if repeat == RepeatAll {
			return 0, true
		}
		return current, false
	}
	return next, true
}

// prevIndex picks the index before current, wrapping from the first track
// to the last. Wraparound applies regardless of shuffle or repeat mode.
func prevIndex(length, current int) (int, bool) {
	if length == 0 {
		return 0, false
	}
	if current < 0 {
		return 0, true
	}
	next := current - 1
	if next < 0 {
		next = length - 1
	}
	if next >= length {
		next = length - 1
	}
	return next, true
}
