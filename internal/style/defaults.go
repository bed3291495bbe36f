package style

// MaxHeight is the tallest building the output format can carry
const MaxHeight = 255

// DefaultConfig returns the built-in vocabulary and rules
func DefaultConfig() *Config {
	return &Config{
		Surfaces: []string{
			"default",
			"paving_stones", "fine_gravel", "concrete", "asphalt", "dirt",
			"highway", "footway", "service", "cycleway", "pedestrian", "residential", "path",
			"leisure", "park", "playground", "sports_centre", "pitch",
			"amenity", "school", "parking",
			"landuse", "residential_landuse", "village_green",
			"natural", "water",
			"building_ground", "grass",
		},
		SurfaceLevels: &SurfaceLevels{
			ForcedLow: []string{"natural", "building_ground"},
			Medium: []string{
				"residential_landuse", "landuse", "leisure", "sports_centre",
				"pitch", "amenity", "school",
			},
			High: []string{
				"grass", "asphalt", "paving_stones", "fine_gravel", "concrete", "dirt",
				"highway", "footway", "cycleway", "pedestrian", "path",
				"park", "playground", "parking", "village_green", "water",
			},
		},
		SurfaceRules: []SurfaceRule{
			{
				Key:        "surface",
				Vocabulary: true,
				Partition:  true,
			},
			{
				Key: "natural",
				Values: map[string]Assignment{
					"water": {Surface: "water", Level: LevelMedium},
				},
				Fallback: &Assignment{Surface: "natural", Level: LevelLow},
			},
			{
				Key: "amenity",
				Values: map[string]Assignment{
					"grave_yard": {Surface: "village_green", Level: LevelMedium},
				},
				Vocabulary:      true,
				VocabularyLevel: LevelMedium,
				Fallback:        &Assignment{Surface: "amenity", Level: LevelMedium},
			},
			{
				Key: "leisure",
				Values: map[string]Assignment{
					"swimming_pool": {Surface: "water", Level: LevelHigh},
				},
				Vocabulary:      true,
				VocabularyLevel: LevelMedium,
				Fallback:        &Assignment{Surface: "leisure", Level: LevelHigh},
			},
			{
				Key: "landuse",
				Values: map[string]Assignment{
					"residential": {Surface: "residential_landuse", Level: LevelLow},
					"reservoir":   {Surface: "water", Level: LevelLow},
					"grass":       {Surface: "natural", Level: LanduseVegetationLevel},
					"meadow":      {Surface: "natural", Level: LanduseVegetationLevel},
					"forest":      {Surface: "natural", Level: LanduseVegetationLevel},
				},
				Vocabulary:      true,
				VocabularyLevel: LevelLow,
				Fallback:        &Assignment{Surface: "landuse", Level: LevelLow},
			},
			{
				Key: "place",
				Values: map[string]Assignment{
					"islet": {Surface: "default", Level: LevelLow},
				},
			},
		},

		Decorations: []string{
			"none", "natural", "grass", "tree", "leaf_tree", "conifer", "bush",
			"post_box", "recycling", "vending_machine", "bench", "telephone",
			"barrier", "fence", "wall", "bollard", "gate", "hedge",
		},
		DecorationRules: []DecorationRule{
			{Key: "natural", Strict: true},
			{Key: "amenity"},
			{Key: "barrier", Fallback: "barrier"},
		},

		AreaRelations: TagTable{
			"natural": {"water"},
			"landuse": {"forest", "meadow"},
			"surface": {"grass"},
			"leisure": {"park"},
			"place":   {"islet"},
		},
		BuildingRelations: TagTable{
			"building": {},
		},

		WaterwayTypes:    []string{"river", "stream", "canal", "drain", "ditch", "brook"},
		TunnelExemptions: []string{"building_passage"},

		BuildingHeights: map[string]int{
			"yes": 1, "bungalow": 1, "toilets": 1,
			"school": 2, "college": 2, "train_station": 2, "transportation": 2, "barn": 2,
			"hospital": 3, "university": 3,
			"church": 4, "mosque": 4, "synagogue": 4, "temple": 4, "government": 4,
			"cathedral": 5,
		},
		TowerHeights: map[string]int{
			"bell_tower": 9,
		},
		DefaultHeight: 1,
		LevelHeight:   3,

		Materials: []string{"brick"},
	}
}
