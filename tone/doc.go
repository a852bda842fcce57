// Package tone schedules enveloped tones on an audio graph.
//
// A Session owns everything that is mutable during playback: the lazily
// opened Context, the set of tones still sounding, the gain shared by the
// notes of a sequence and the busy flag that keeps two sequences from
// overlapping. All timing is expressed on the Context's own clock, in seconds,
// and the play methods return as soon as the tones are scheduled.
//
// Completion is event based. Every oscillator's Ended channel is watched by a
// small goroutine that forwards the event to the session's run loop; only the
// run loop (and the play methods, under the session mutex) ever modify the
// session state.
package tone
