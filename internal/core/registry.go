package core

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/JonMunkholm/crmport/internal/tabular"
)

// EntityDefinition contains everything needed to detect, validate and build
// one entity type.
type EntityDefinition struct {
	Type     EntityType
	Label    string   // Display name: "Accounts"
	FileName string   // Archive member name on export: "accounts.csv"
	NameHint string   // Member-name substring used for detection and ordering
	Priority int      // Processing tier, lower first
	Headers  []string // Export column order

	Validate func(row tabular.Row, line int) []ValidationError
	Build    func(row tabular.Row) (Record, error)
}

// entityOrder is the canonical order of entity types in reports and exports.
var entityOrder = []EntityType{
	EntityAccounts,
	EntityContacts,
	EntityCommunications,
	EntityOpportunities,
}

var (
	registry   = make(map[EntityType]EntityDefinition)
	registryMu sync.RWMutex
)

// Register adds an entity definition to the registry.
// Panics if the type is already registered.
func Register(def EntityDefinition) {
	registryMu.Lock()
	defer registryMu.Unlock()

	if _, exists := registry[def.Type]; exists {
		panic(fmt.Sprintf("entity already registered: %s", def.Type))
	}
	registry[def.Type] = def
}

// Get returns an entity definition by type.
func Get(et EntityType) (EntityDefinition, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()

	def, ok := registry[et]
	return def, ok
}

// All returns the registered definitions in canonical order.
func All() []EntityDefinition {
	registryMu.RLock()
	defer registryMu.RUnlock()

	result := make([]EntityDefinition, 0, len(registry))
	for _, et := range entityOrder {
		if def, ok := registry[et]; ok {
			result = append(result, def)
		}
	}
	return result
}

// priorityOf returns the processing tier for a member name. Names that match
// no entity hint run last.
func priorityOf(name string) int {
	lower := strings.ToLower(name)
	for _, def := range All() {
		if strings.Contains(lower, def.NameHint) {
			return def.Priority
		}
	}
	return lastPriority
}

const lastPriority = 4

// sortMembers orders members by processing tier. The sort is stable, so
// members in the same tier keep their enumeration order.
func sortMembers(members []tabular.Member) []tabular.Member {
	sorted := make([]tabular.Member, len(members))
	copy(sorted, members)
	sort.SliceStable(sorted, func(i, j int) bool {
		return priorityOf(sorted[i].Name) < priorityOf(sorted[j].Name)
	})
	return sorted
}
