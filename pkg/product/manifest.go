package product

import (
	"embed"
	"fmt"
	"sort"
	"strconv"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed skus.yaml
var manifestFS embed.FS

// Manifest is the embedded SKU trait table.
type Manifest struct {
	SKUs []SKU `yaml:"skus"`
}

// SKU describes one camera model's static traits.
type SKU struct {
	// PID is the product ID as a hex string, e.g. "0x0B5C".
	PID string `yaml:"pid"`
	// Name is the marketing name, e.g. "D455".
	Name string `yaml:"name"`
	// DepthUnits is the default depth unit in meters; 0 means the family
	// default of 0.001.
	DepthUnits float64 `yaml:"depth_units,omitempty"`
	// IMU pins the IMU chip variant ("bmi055", "bmi085") for SKUs whose
	// chip ID byte is known to be unreliable.
	IMU string `yaml:"imu,omitempty"`
}

var (
	manifestMu   sync.Mutex
	manifestByID map[ID]SKU
)

func lookup(id ID) (SKU, bool) {
	manifestMu.Lock()
	defer manifestMu.Unlock()

	if manifestByID == nil {
		m, err := loadManifest()
		if err != nil {
			// The manifest is embedded; failing to parse it is a build
			// defect, not a runtime condition.
			panic(fmt.Sprintf("product: embedded SKU manifest is invalid: %v", err))
		}
		manifestByID = make(map[ID]SKU, len(m.SKUs))
		for _, sku := range m.SKUs {
			pid, err := strconv.ParseUint(sku.PID, 0, 16)
			if err != nil {
				panic(fmt.Sprintf("product: bad pid %q in SKU manifest: %v", sku.PID, err))
			}
			manifestByID[ID(pid)] = sku
		}
	}

	sku, ok := manifestByID[id]
	return sku, ok
}

func loadManifest() (*Manifest, error) {
	data, err := manifestFS.ReadFile("skus.yaml")
	if err != nil {
		return nil, err
	}
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing SKU manifest: %w", err)
	}
	return &m, nil
}

// All returns the product IDs present in the manifest, sorted.
func All() []ID {
	lookup(0) // force load
	manifestMu.Lock()
	defer manifestMu.Unlock()

	ids := make([]ID, 0, len(manifestByID))
	for id := range manifestByID {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
