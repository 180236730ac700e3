package domain

// WorkGroup is the trade/work-group category of a priced BOQ item.
// The tag set is closed; new categories are data edits to the rule table,
// not code changes elsewhere.
type WorkGroup string

// WorkGroup constants
const (
	GroupZemniPrace   WorkGroup = "zemni_prace"   // earthworks
	GroupBetonMonolit WorkGroup = "beton_monolit" // cast-in-place concrete
	GroupPrefabrikaty WorkGroup = "prefabrikaty"  // precast concrete
	GroupVyztuz       WorkGroup = "vyztuz"        // reinforcement
	GroupKotveni      WorkGroup = "kotveni"       // anchoring
	GroupBedneni      WorkGroup = "bedneni"       // formwork
	GroupPiloty       WorkGroup = "piloty"        // piles
	GroupIzolace      WorkGroup = "izolace"       // waterproofing / insulation
	GroupKomunikace   WorkGroup = "komunikace"    // roadworks
	GroupPresunHmot   WorkGroup = "presun_hmot"   // transport of materials
	GroupLoziska      WorkGroup = "loziska"       // bearings
)

// AllWorkGroups lists every member of the closed tag set.
var AllWorkGroups = []WorkGroup{
	GroupZemniPrace,
	GroupBetonMonolit,
	GroupPrefabrikaty,
	GroupVyztuz,
	GroupKotveni,
	GroupBedneni,
	GroupPiloty,
	GroupIzolace,
	GroupKomunikace,
	GroupPresunHmot,
	GroupLoziska,
}

// Valid reports whether g is a member of the closed tag set.
func (g WorkGroup) Valid() bool {
	for _, wg := range AllWorkGroups {
		if g == wg {
			return true
		}
	}
	return false
}
