package registry

import (
	"sync"

	"github.com/google/uuid"
	"github.com/milk9111/grindkit/extract"
	"github.com/milk9111/grindkit/feature"
	"github.com/milk9111/grindkit/logging"
	"github.com/milk9111/grindkit/proxy"
	"go.uber.org/zap"
)

// InteractionData holds the features extracted from one source and the
// proxy colliders built for them.
type InteractionData struct {
	Source    uuid.UUID
	Edges     []feature.GrindEdge
	Surfaces  []feature.ClimbSurface
	Colliders []feature.ColliderID
	Processed bool
}

func (d *InteractionData) clone() InteractionData {
	if d == nil {
		return InteractionData{}
	}
	return InteractionData{
		Source:    d.Source,
		Edges:     append([]feature.GrindEdge(nil), d.Edges...),
		Surfaces:  append([]feature.ClimbSurface(nil), d.Surfaces...),
		Colliders: append([]feature.ColliderID(nil), d.Colliders...),
		Processed: d.Processed,
	}
}

// Registry owns every extracted feature and collider, keyed by source.
// Register and Unregister take the write lock; queries share the read lock.
type Registry struct {
	mu sync.RWMutex

	settings extract.Settings
	synth    *proxy.Synthesizer
	logger   *zap.Logger

	sources map[uuid.UUID]*InteractionData
	order   []uuid.UUID

	listeners []func(Event)
	events    EventQueue
}

type Option func(*Registry)

func WithExtractSettings(s extract.Settings) Option {
	return func(r *Registry) { r.settings = s }
}

// WithSynthesizer enables proxy collider synthesis.
func WithSynthesizer(s *proxy.Synthesizer) Option {
	return func(r *Registry) { r.synth = s }
}

func WithLogger(l *zap.Logger) Option {
	return func(r *Registry) { r.logger = logging.OrNop(l).Named("registry") }
}

func New(opts ...Option) *Registry {
	r := &Registry{
		settings: extract.DefaultSettings(),
		logger:   logging.Nop(),
		sources:  make(map[uuid.UUID]*InteractionData),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Reconfigure swaps the extraction settings and synthesizer used by later
// registrations. Sources already registered keep their features until they
// are registered again.
func (r *Registry) Reconfigure(settings extract.Settings, synth *proxy.Synthesizer) {
	r.mu.Lock()
	r.settings = settings
	r.synth = synth
	r.mu.Unlock()
}

// Subscribe adds a listener called after every register and unregister,
// outside the registry lock.
func (r *Registry) Subscribe(fn func(Event)) {
	if fn == nil {
		return
	}
	r.mu.Lock()
	r.listeners = append(r.listeners, fn)
	r.mu.Unlock()
}

// DrainEvents returns the events queued since the last drain.
func (r *Registry) DrainEvents() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.events.Drain()
}

// Register extracts features from src once. Registering an already
// processed source returns the cached data. Bad geometry is logged and
// yields empty feature lists.
func (r *Registry) Register(src Source) InteractionData {
	if src == nil {
		r.logger.Warn("register called with nil source")
		return InteractionData{}
	}
	id := src.SourceID()

	r.mu.Lock()
	if data, ok := r.sources[id]; ok && data.Processed {
		out := data.clone()
		r.mu.Unlock()
		return out
	}

	data := r.extract(id, src)
	if _, ok := r.sources[id]; !ok {
		r.order = append(r.order, id)
	}
	r.sources[id] = data
	evt := Event{Kind: EventRegistered, Source: id, Edges: len(data.Edges), Surfaces: len(data.Surfaces)}
	r.events.Push(evt)
	out := data.clone()
	listeners := append(([]func(Event))(nil), r.listeners...)
	r.mu.Unlock()

	r.logger.Info("registered source",
		zap.Stringer("source", id),
		zap.Int("edges", evt.Edges),
		zap.Int("surfaces", evt.Surfaces),
		zap.Int("colliders", len(out.Colliders)))
	notify(listeners, evt)
	return out
}

func (r *Registry) extract(id uuid.UUID, src Source) *InteractionData {
	data := &InteractionData{Source: id}
	m, xf := src.Geometry()
	affords := src.Affordances()
	log := r.logger.With(zap.Stringer("source", id))

	if affords.Has(Grindable) {
		edges, err := extract.BoundaryEdges(m, xf, r.settings)
		if err != nil {
			log.Warn("edge extraction failed", zap.Error(err))
		}
		for i := range edges {
			edges[i].Source = id
		}
		data.Edges = edges
	}

	if affords.Has(Climbable) {
		surfaces, err := extract.ClimbSurfaces(m, xf, r.settings)
		if err != nil {
			log.Warn("surface extraction failed", zap.Error(err))
		}
		for i := range surfaces {
			surfaces[i].Source = id
		}
		data.Surfaces = surfaces
	}

	if r.synth.Enabled() {
		for i := range data.Edges {
			cid, err := r.synth.ForEdge(data.Edges[i])
			if err != nil {
				log.Warn("skipping edge proxy", zap.Int("edge", i), zap.Error(err))
				continue
			}
			data.Edges[i].Collider = cid
			data.Colliders = append(data.Colliders, cid)
		}
		for i := range data.Surfaces {
			cid, err := r.synth.ForSurface(data.Surfaces[i])
			if err != nil {
				log.Warn("skipping surface proxy", zap.Int("surface", i), zap.Error(err))
				continue
			}
			data.Surfaces[i].Collider = cid
			data.Colliders = append(data.Colliders, cid)
		}
	}

	data.Processed = true
	return data
}

// Unregister destroys the source's colliders and forgets its features. It
// reports whether the source was registered.
func (r *Registry) Unregister(id uuid.UUID) bool {
	r.mu.Lock()
	data, ok := r.sources[id]
	if !ok {
		r.mu.Unlock()
		return false
	}
	for _, cid := range data.Colliders {
		r.synth.Destroy(cid)
	}
	delete(r.sources, id)
	for i, other := range r.order {
		if other == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	evt := Event{Kind: EventUnregistered, Source: id, Edges: len(data.Edges), Surfaces: len(data.Surfaces)}
	r.events.Push(evt)
	listeners := append(([]func(Event))(nil), r.listeners...)
	r.mu.Unlock()

	r.logger.Info("unregistered source", zap.Stringer("source", id), zap.Int("colliders", len(data.Colliders)))
	notify(listeners, evt)
	return true
}

// SourceDestroyed is the hook for hosts whose objects are destroyed without
// an explicit unregister.
func (r *Registry) SourceDestroyed(id uuid.UUID) {
	r.Unregister(id)
}

// Clear unregisters every source.
func (r *Registry) Clear() {
	for _, id := range r.Sources() {
		r.Unregister(id)
	}
}

// Lookup returns a copy of the data registered for id.
func (r *Registry) Lookup(id uuid.UUID) (InteractionData, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	data, ok := r.sources[id]
	if !ok {
		return InteractionData{}, false
	}
	return data.clone(), true
}

// Sources returns the registered source ids in registration order.
func (r *Registry) Sources() []uuid.UUID {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]uuid.UUID(nil), r.order...)
}

// SurfaceAlive reports whether h still names a registered climb surface.
func (r *Registry) SurfaceAlive(h feature.Handle) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	data, ok := r.sources[h.Source]
	return ok && h.Index >= 0 && h.Index < len(data.Surfaces)
}

// EdgeAlive reports whether h still names a registered edge.
func (r *Registry) EdgeAlive(h feature.Handle) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	data, ok := r.sources[h.Source]
	return ok && h.Index >= 0 && h.Index < len(data.Edges)
}

func notify(listeners []func(Event), evt Event) {
	for _, fn := range listeners {
		fn(evt)
	}
}
