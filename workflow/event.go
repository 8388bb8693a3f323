package workflow

import "github.com/spetersoncode/flowgate/event"

// Event is an alias for event.Event so callers need not import both packages.
type Event = event.Event
