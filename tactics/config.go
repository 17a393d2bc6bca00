package tactics

import "time"

// Config holds the tuning values of the tactics manager. Radii and
// distances are in map tiles.
type Config struct {
	Quantum             time.Duration `yaml:"quantum"`               // scheduler tick quantum
	TrackingRadius      int           `yaml:"tracking_radius"`       // sticky target and opportunistic scan radius
	PlayerBaseRadius    int           `yaml:"player_base_radius"`    // default ATTACK/COMPROMISE scan radius
	DefenseRadius       int           `yaml:"defense_radius"`        // default DEFEND radius
	CloseRadius         int           `yaml:"close_radius"`          // members this close to the target get no new orders
	ClusterSize         int           `yaml:"cluster_size"`          // regroup proximity threshold
	CloseZ              int           `yaml:"close_z"`               // vertical band for opportunistic targets
	PatrolScanRange     int           `yaml:"patrol_scan_range"`     // opportunistic scan range on PATROL
	CompromiseScanRange int           `yaml:"compromise_scan_range"` // opportunistic scan range on COMPROMISE
	SensorRangeFactor   float64       `yaml:"sensor_range_factor"`   // scan range multiplier for sensor units
	RegroupRatio        float64       `yaml:"regroup_ratio"`         // largest-cluster share required when count < 0

	SectorChunk    int           `yaml:"sector_chunk"`
	PoisonDistance int           `yaml:"poison_distance"`
	MaxPoisoned    int           `yaml:"max_poisoned"`
	PoisonCooldown time.Duration `yaml:"poison_cooldown"`
	PoisonHealth   int           `yaml:"poison_health"` // hits leaving a unit below this health % poison the area
	RescanInterval time.Duration `yaml:"rescan_interval"`
	RetreatRadius  int           `yaml:"retreat_radius"`

	RegroupFallbackWindow time.Duration `yaml:"regroup_fallback_window"`
	RunAwayWindow         time.Duration `yaml:"run_away_window"`
	DefaultRepair         int           `yaml:"default_repair"`
	PatrolInterval        time.Duration `yaml:"patrol_interval"`
}

// DefaultConfig returns the values the campaign scripts were tuned with.
func DefaultConfig() Config {
	return Config{
		Quantum:             100 * time.Millisecond,
		TrackingRadius:      7,
		PlayerBaseRadius:    20,
		DefenseRadius:       4,
		CloseRadius:         2,
		ClusterSize:         4,
		CloseZ:              1,
		PatrolScanRange:     5,
		CompromiseScanRange: 2,
		SensorRangeFactor:   1.5,
		RegroupRatio:        0.66,

		SectorChunk:    8,
		PoisonDistance: 6,
		MaxPoisoned:    9,
		PoisonCooldown: 30 * time.Second,
		PoisonHealth:   25,
		RescanInterval: 5 * time.Second,
		RetreatRadius:  16,

		RegroupFallbackWindow: 5 * time.Second,
		RunAwayWindow:         10 * time.Second,
		DefaultRepair:         66,
		PatrolInterval:        60 * time.Second,
	}
}
