package ports

import "context"

// AudioPlayer controls a single audio asset on the client.
//
// Play starts playback and returns a channel that is closed when the
// asset finishes. If the client runtime rejects autoplay, Play returns
// domain.ErrAutoplayBlocked and no playback starts.
type AudioPlayer interface {
	Play(ctx context.Context) (done <-chan struct{}, err error)
	Stop()
}
