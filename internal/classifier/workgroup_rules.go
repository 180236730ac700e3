// internal/classifier/workgroup_rules.go
package classifier

import "github.com/rozpoctar/boq-classifier/internal/domain"

// Base priority tiers. A rule at or above domain.AbsolutePriority wins any
// conflict with the groups it lists in PriorityOver.
const (
	priorityNormal   = 100
	priorityElevated = 150
)

// DefaultWorkGroupRules is the built-in scoring table. Keywords are stored
// diacritics-stripped and lowercased because scoring runs over normalized
// descriptions. Declaration order is the tie-break order.
//
// The table is data, not behavior: adding a category or keyword is an edit
// here (or a row in the rule store), never a code change in the scorer.
var DefaultWorkGroupRules = []domain.WorkGroupRule{
	{
		ID:    1,
		Group: domain.GroupPiloty,
		Include: []string{
			"pilota", "piloty", "pilot", "vrtane piloty", "vrtani pilot",
			"hlava piloty", "hlavy pilot", "pazeni vrtu", "paznice",
			"mikropilota", "mikropiloty",
		},
		BoostUnits:   []string{"m", "kus"},
		BasePriority: domain.AbsolutePriority,
		PriorityOver: []domain.WorkGroup{
			domain.GroupBetonMonolit,
			domain.GroupZemniPrace,
			domain.GroupVyztuz,
			domain.GroupKotveni,
			domain.GroupBedneni,
			domain.GroupPresunHmot,
			domain.GroupIzolace,
			domain.GroupLoziska,
		},
		Enabled: true,
	},
	{
		ID:    2,
		Group: domain.GroupZemniPrace,
		Include: []string{
			"vykop", "vykopavka", "hloubeni", "odkop", "prokop",
			"sejmuti ornice", "nasyp", "zasyp", "obsyp", "ryha",
			"jama pazena", "odvoz zeminy", "ulozeni zeminy",
			"svahovani", "zemina", "hutneni",
		},
		Exclude:      []string{"vykopavka ze sutin"},
		BoostUnits:   []string{"m3"},
		BasePriority: priorityNormal,
		Enabled:      true,
	},
	{
		ID:    3,
		Group: domain.GroupBetonMonolit,
		Include: []string{
			"beton", "zelezobeton", "monoliticky", "betonaz",
			"zakladovy pas", "zakladova deska", "drik", "rimsa",
			"c25/30", "c30/37", "c20/25", "c35/45",
		},
		Exclude:      []string{"prefabrik", "predpjaty dilec"},
		BoostUnits:   []string{"m3"},
		BasePriority: priorityNormal,
		Enabled:      true,
	},
	{
		ID:    4,
		Group: domain.GroupPrefabrikaty,
		Include: []string{
			"prefabrikat", "prefabrikovany", "prefabrikovana",
			"montaz nosniku", "montaz dilcu", "tycovy dilec",
			"predpjaty dilec", "panel", "zavesny dilec",
		},
		BoostUnits:   []string{"kus", "m3"},
		BasePriority: priorityElevated,
		PriorityOver: []domain.WorkGroup{
			domain.GroupBetonMonolit,
			domain.GroupKomunikace,
		},
		Enabled: true,
	},
	{
		ID:    5,
		Group: domain.GroupVyztuz,
		Include: []string{
			"vyztuz", "armatura", "armovani", "betonarska ocel",
			"b500", "10 505", "kari sit", "svarovana sit", "ocel 10",
		},
		Exclude:      []string{"geotextilie"},
		BoostUnits:   []string{"t", "kg"},
		BasePriority: priorityNormal,
		Enabled:      true,
	},
	{
		ID:    6,
		Group: domain.GroupKotveni,
		Include: []string{
			"kotva", "kotvy", "kotveni", "kotevni", "zemni kotva",
			"injektaz", "svornik", "trn", "lepena kotva",
		},
		BoostUnits:   []string{"kus", "m"},
		BasePriority: priorityElevated,
		PriorityOver: []domain.WorkGroup{
			domain.GroupVyztuz,
		},
		Enabled: true,
	},
	{
		ID:    7,
		Group: domain.GroupBedneni,
		Include: []string{
			"bedneni", "odbedneni", "obedneni", "bednici", "forma",
			"podperna konstrukce", "skruz",
		},
		BoostUnits:   []string{"m2"},
		BasePriority: priorityNormal,
		Enabled:      true,
	},
	{
		ID:    8,
		Group: domain.GroupIzolace,
		Include: []string{
			"izolace", "hydroizolace", "geotextilie", "asfaltovy pas",
			"penetracni nater", "izolacni privarovany pas",
			"proti zemni vlhkosti", "proti tlakove vode", "nopova folie",
		},
		BoostUnits:   []string{"m2"},
		BasePriority: priorityNormal,
		Enabled:      true,
	},
	{
		ID:    9,
		Group: domain.GroupKomunikace,
		Include: []string{
			"vozovka", "asfaltovy beton", "kryt vozovky", "komunikace",
			"sterkodrt", "obrubnik", "dlazba", "zamkova dlazba",
			"podkladni vrstva", "asfalt",
		},
		Exclude:      []string{"komunikacni vedeni"},
		BoostUnits:   []string{"m2"},
		BasePriority: priorityNormal,
		Enabled:      true,
	},
	{
		ID:    10,
		Group: domain.GroupPresunHmot,
		Include: []string{
			"presun hmot", "doprava", "odvoz", "privoz", "premisteni",
			"nakladani", "slozeni", "vnitrostavenistni presun",
		},
		BoostUnits:   []string{"t"},
		BasePriority: priorityElevated,
		PriorityOver: []domain.WorkGroup{
			domain.GroupBetonMonolit,
		},
		Enabled: true,
	},
	{
		ID:    11,
		Group: domain.GroupLoziska,
		Include: []string{
			"lozisko", "loziska", "elastomerove lozisko", "hrncove lozisko",
			"ulozeni mostu", "kluzna deska",
		},
		BoostUnits:   []string{"kus"},
		BasePriority: priorityElevated,
		PriorityOver: []domain.WorkGroup{
			domain.GroupBetonMonolit,
			domain.GroupPrefabrikaty,
		},
		Enabled: true,
	},
}
