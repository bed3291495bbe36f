package style

type set map[string]struct{}

func newSet(values []string) set {
	s := make(set, len(values))
	for _, v := range values {
		s[v] = struct{}{}
	}
	return s
}

func (s set) has(v string) bool {
	_, ok := s[v]
	return ok
}

// Style is a validated Config with its lists compiled to lookup sets.
// It is read-only and safe for concurrent use.
type Style struct {
	cfg *Config

	surfaces    set
	forcedLow   set
	medium      set
	high        set
	decorations set
	waterways   set
	exemptions  set
	materials   set
}

// New compiles cfg. A nil cfg uses DefaultConfig.
func New(cfg *Config) (*Style, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	levels := cfg.SurfaceLevels
	if levels == nil {
		levels = &SurfaceLevels{}
	}
	return &Style{
		cfg:         cfg,
		surfaces:    newSet(cfg.Surfaces),
		forcedLow:   newSet(levels.ForcedLow),
		medium:      newSet(levels.Medium),
		high:        newSet(levels.High),
		decorations: newSet(cfg.Decorations),
		waterways:   newSet(cfg.WaterwayTypes),
		exemptions:  newSet(cfg.TunnelExemptions),
		materials:   newSet(cfg.Materials),
	}, nil
}

// Default returns the compiled built-in style
func Default() *Style {
	s, err := New(DefaultConfig())
	if err != nil {
		panic("style: invalid default config: " + err.Error())
	}
	return s
}

// Config returns the underlying configuration
func (s *Style) Config() *Config { return s.cfg }

func (s *Style) SurfaceRules() []SurfaceRule       { return s.cfg.SurfaceRules }
func (s *Style) DecorationRules() []DecorationRule { return s.cfg.DecorationRules }

func (s *Style) IsSurface(v string) bool    { return s.surfaces.has(v) }
func (s *Style) IsDecoration(v string) bool { return s.decorations.has(v) }
func (s *Style) IsWaterway(v string) bool   { return s.waterways.has(v) }
func (s *Style) IsMaterial(v string) bool   { return s.materials.has(v) }

// TunnelExempt reports whether a tunnel value keeps the surface layer
func (s *Style) TunnelExempt(v string) bool { return s.exemptions.has(v) }

// PartitionLevel returns the level of an explicit surface value.
// Forced-low wins over the medium and high lists.
func (s *Style) PartitionLevel(surface string) Level {
	switch {
	case s.forcedLow.has(surface):
		return LevelLow
	case s.medium.has(surface):
		return LevelMedium
	case s.high.has(surface):
		return LevelHigh
	default:
		return LevelLow
	}
}

// AreaRelation reports whether relation tags route it to the area bucket
func (s *Style) AreaRelation(tags map[string]string) bool {
	return s.cfg.AreaRelations.MatchAny(tags)
}

// BuildingRelation reports whether relation tags route it to the building bucket
func (s *Style) BuildingRelation(tags map[string]string) bool {
	return s.cfg.BuildingRelations.MatchAny(tags)
}

// BuildingHeight returns the height guess for a building value
func (s *Style) BuildingHeight(v string) (int, bool) {
	h, ok := s.cfg.BuildingHeights[v]
	return h, ok
}

// TowerHeight returns the height guess for a tower:type value
func (s *Style) TowerHeight(v string) (int, bool) {
	h, ok := s.cfg.TowerHeights[v]
	return h, ok
}

func (s *Style) DefaultHeight() int { return s.cfg.DefaultHeight }
func (s *Style) LevelHeight() int   { return s.cfg.LevelHeight }
