package display

import (
	"io"
	"sync"
	"time"

	"github.com/charleschow/superleague-points/internal/core/scenario"
	"github.com/charleschow/superleague-points/internal/events"
	"github.com/charleschow/superleague-points/internal/telemetry"
)

const repeatDisplayThrottle = 30 * time.Second

// Observer prints every computed scenario to w. Identical match states
// for the same teams are printed at most once per throttle window so a
// polling client doesn't flood the console. Keys older than the window
// are dropped on each print.
type Observer struct {
	w        io.Writer
	throttle time.Duration
	now      func() time.Time

	mu       sync.Mutex
	lastSeen map[scenarioKey]time.Time
}

type scenarioKey struct {
	kind    scenario.Kind
	state   scenario.MatchState
	batting string
	chasing string
}

func NewObserver(w io.Writer) *Observer {
	return &Observer{
		w:        w,
		throttle: repeatDisplayThrottle,
		now:      time.Now,
		lastSeen: make(map[scenarioKey]time.Time),
	}
}

// Attach subscribes the observer to computed-scenario events.
func (o *Observer) Attach(bus *events.Bus) {
	bus.Subscribe(events.EventScenarioComputed, o.OnEvent)
}

func (o *Observer) OnEvent(evt events.Event) error {
	sc, ok := evt.Payload.(events.ScenarioComputedEvent)
	if !ok {
		return nil
	}

	key := scenarioKey{
		kind:    sc.Result.Kind,
		state:   sc.Result.State,
		batting: NormalizeTeam(sc.Batting),
		chasing: NormalizeTeam(sc.Chasing),
	}
	now := o.now()

	o.mu.Lock()
	last, seen := o.lastSeen[key]
	if seen && now.Sub(last) < o.throttle {
		o.mu.Unlock()
		return nil
	}
	for k, t := range o.lastSeen {
		if now.Sub(t) >= o.throttle {
			delete(o.lastSeen, k)
		}
	}
	o.lastSeen[key] = now
	o.mu.Unlock()

	telemetry.Debugf("display: %s scenario from %s (%d rows)", sc.Result.Kind, sc.Source, sc.Result.Rows())
	return Render(o.w, sc.Result, Teams{Batting: sc.Batting, Chasing: sc.Chasing})
}
