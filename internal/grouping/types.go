package grouping

type Type string

const (
	Semantic   Type = "semantic"
	Density    Type = "density"
	Contiguous Type = "contiguous"
)

// LevelGroup bundles consecutive header levels into one navigational unit.
type LevelGroup struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Levels    []int  `json:"levels"`
	Type      Type   `json:"type"`
	Expanded  bool   `json:"expanded"`
	NodeCount int    `json:"nodeCount"`
}

func (g LevelGroup) Clone() LevelGroup {
	g.Levels = append([]int(nil), g.Levels...)
	return g
}

func CloneAll(groups []LevelGroup) []LevelGroup {
	if groups == nil {
		return nil
	}
	out := make([]LevelGroup, len(groups))
	for i, g := range groups {
		out[i] = g.Clone()
	}
	return out
}

type Config struct {
	AutoGroupThreshold int
	SemanticGrouping   bool
	MaxVisibleLevels   int
}

const (
	DefaultAutoGroupThreshold = 4
	DefaultMaxVisibleLevels   = 3
)

func DefaultConfig() Config {
	return Config{
		AutoGroupThreshold: DefaultAutoGroupThreshold,
		SemanticGrouping:   true,
		MaxVisibleLevels:   DefaultMaxVisibleLevels,
	}
}

func (c Config) normalized() Config {
	if c.AutoGroupThreshold <= 0 {
		c.AutoGroupThreshold = DefaultAutoGroupThreshold
	}
	if c.MaxVisibleLevels <= 0 {
		c.MaxVisibleLevels = DefaultMaxVisibleLevels
	}
	return c
}
