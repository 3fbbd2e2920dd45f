// Package ltc encodes SMPTE 12M Linear Timecode. The primary types in
// this package are:
//
// 	type Timecode struct{ Hours, Minutes, Seconds, Frame int }
//
// 	type Frame [80]uint8
//
// A Timecode is advanced frame by frame, packed together with eight
// nibbles of UserBits into an 80-bit Frame by Encode, and rendered as a
// biphase-mark audio signal by Modulate. Generator ties the three steps
// together over a duration and returns one contiguous sample buffer.
//
// Drop-frame counting is not implemented; the drop-frame flag is always
// clear, even for 29.97 and 59.94 frame rates.
package ltc
