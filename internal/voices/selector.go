package voices

import (
	"errors"
	"log"
	"sync"
)

// ErrUnknownVoice is returned when an override names a voice the platform
// has not reported.
var ErrUnknownVoice = errors.New("voice not in current list")

// PreferenceStore persists the chosen voice across sessions.
type PreferenceStore interface {
	Get(key string) (string, bool)
	Set(key, value string) error
}

const (
	prefKeyVoice    = "voice_preference"
	prefKeyOverride = "voice_override"
)

// Selector owns the ranked voice list and the preferred-voice choice. The
// scoring itself is pure (Score/Rank); all side effects live here.
type Selector struct {
	store PreferenceStore

	mu        sync.Mutex
	lang      string
	platform  Platform
	browser   Browser
	list      []Descriptor
	preferred *Descriptor
}

func NewSelector(store PreferenceStore, lang string) *Selector {
	return &Selector{
		store:    store,
		lang:     lang,
		platform: PlatformUnknown,
		browser:  BrowserUnknown,
	}
}

// SetEnvironment records the worker's detected platform and browser and
// recomputes the preference.
func (s *Selector) SetEnvironment(p Platform, b Browser) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.platform = p
	s.browser = b
	s.recomputeLocked()
}

// SetLanguage switches the wanted language and recomputes the preference.
func (s *Selector) SetLanguage(lang string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.lang == lang {
		return
	}
	s.lang = lang
	s.recomputeLocked()
}

// Update replaces the available-voice list. Called whenever the platform
// reports its voices, initially and on change events.
func (s *Selector) Update(list []Descriptor) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.list = append([]Descriptor(nil), list...)
	s.recomputeLocked()
}

// Preferred returns the current choice. The second result is false when no
// voices are available, which is a valid, non-fatal state.
func (s *Selector) Preferred() (Descriptor, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.preferred == nil {
		return Descriptor{}, false
	}
	return *s.preferred, true
}

// Ranked returns the scored list, best first.
func (s *Selector) Ranked() []Scored {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Rank(s.list, s.lang, s.platform, s.browser)
}

// SetOverride pins a voice by name. The override persists and takes
// precedence over automatic scoring until cleared or until the voice
// disappears from the platform's list.
func (s *Selector) SetOverride(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.findByNameLocked(name) == nil {
		return ErrUnknownVoice
	}
	if err := s.store.Set(prefKeyOverride, name); err != nil {
		return err
	}
	s.recomputeLocked()
	return nil
}

// ClearOverride removes the manual pin; automatic scoring resumes.
func (s *Selector) ClearOverride() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.store.Set(prefKeyOverride, ""); err != nil {
		return err
	}
	s.recomputeLocked()
	return nil
}

func (s *Selector) recomputeLocked() {
	if len(s.list) == 0 {
		s.preferred = nil
		return
	}

	// Manual override wins while the voice still exists; a vanished
	// override falls through to scoring silently.
	if name, ok := s.store.Get(prefKeyOverride); ok && name != "" {
		if d := s.findByNameLocked(name); d != nil {
			s.preferred = d
			return
		}
	}

	ranked := Rank(s.list, s.lang, s.platform, s.browser)

	if uri, ok := s.store.Get(prefKeyVoice); ok && uri != "" {
		for i := range ranked {
			if ranked[i].VoiceURI == uri && ranked[i].Score >= KeepThreshold {
				d := ranked[i].Descriptor
				s.preferred = &d
				return
			}
		}
	}

	best := ranked[0]
	if best.Score < ViabilityThreshold {
		log.Printf("[voices] no voice cleared viability for %s; falling back to %q", s.lang, s.list[0].Name)
		d := s.list[0]
		s.preferred = &d
		return
	}

	d := best.Descriptor
	s.preferred = &d
	if err := s.store.Set(prefKeyVoice, d.VoiceURI); err != nil {
		log.Printf("[voices] persist preference: %v", err)
	}
}

func (s *Selector) findByNameLocked(name string) *Descriptor {
	for i := range s.list {
		if s.list[i].Name == name {
			d := s.list[i]
			return &d
		}
	}
	return nil
}
