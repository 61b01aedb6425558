// Package catalog holds the static reward tables: rarity tiers, item
// name suffixes, shop items with their acquisition channels, and the
// building definitions used by the land system and idle economy.
package catalog

import "fmt"

type Rarity string

const (
	Common    Rarity = "common"
	Uncommon  Rarity = "uncommon"
	Rare      Rarity = "rare"
	Epic      Rarity = "epic"
	Legendary Rarity = "legendary"
)

// Channel restricts which items a loot roll may select.
type Channel string

const (
	ChannelShop   Channel = "shop"
	ChannelDrop   Channel = "drop"
	ChannelLesson Channel = "lesson"
)

type ItemType string

const (
	TypeSpecial    ItemType = "special"
	TypeBackground ItemType = "background"
	TypeTitle      ItemType = "title"
	TypeDecoration ItemType = "decoration"
)

type RarityTier struct {
	Rarity     Rarity
	Display    string
	Multiplier float64
	Chance     float64
}

type Suffix struct {
	Name   string // "of Gold"
	Adj    string // "Golden"
	Rarity Rarity
}

type ShopItem struct {
	ID         string
	Name       string
	Type       ItemType
	PriceCents int64
	Icon       string
	Channels   []Channel // empty means shop-only, never dropped
}

type BuildingType string

const (
	BuildingResidential BuildingType = "residential"
	BuildingCommercial  BuildingType = "commercial"
)

type Building struct {
	ID             string
	Name           string
	Type           BuildingType
	CostCents      int64
	Icon           string
	Slots          int   // residential display slots
	DailyIncome    int64 // commercial, cents per day
	VisitFeeCents  int64 // commercial
	DailyRentCents int64 // residential, charged while rented
}

// RarityOrder lists tiers rarest first, the order the loot roll tests
// cumulative thresholds in.
var RarityOrder = []Rarity{Legendary, Epic, Rare, Uncommon, Common}

var Rarities = map[Rarity]RarityTier{
	Common:    {Rarity: Common, Display: "Common", Multiplier: 1, Chance: 0.6},
	Uncommon:  {Rarity: Uncommon, Display: "Uncommon", Multiplier: 1.5, Chance: 0.3},
	Rare:      {Rarity: Rare, Display: "Rare", Multiplier: 3, Chance: 0.09},
	Epic:      {Rarity: Epic, Display: "Epic", Multiplier: 10, Chance: 0.009},
	Legendary: {Rarity: Legendary, Display: "Legendary", Multiplier: 50, Chance: 0.001},
}

var Suffixes = []Suffix{
	{Name: "of Old", Adj: "Ancient", Rarity: Common},
	{Name: "of Stone", Adj: "Stone", Rarity: Common},
	{Name: "of Wood", Adj: "Wooden", Rarity: Common},
	{Name: "of Clay", Adj: "Clay", Rarity: Common},
	{Name: "of Iron", Adj: "Iron", Rarity: Uncommon},
	{Name: "of the Forest", Adj: "Forest", Rarity: Uncommon},
	{Name: "of Bronze", Adj: "Bronze", Rarity: Uncommon},
	{Name: "of the Hills", Adj: "Highland", Rarity: Uncommon},
	{Name: "of Gold", Adj: "Golden", Rarity: Rare},
	{Name: "of the Ocean", Adj: "Oceanic", Rarity: Rare},
	{Name: "of Silver", Adj: "Silver", Rarity: Rare},
	{Name: "of the Sky", Adj: "Celestial", Rarity: Rare},
	{Name: "of Diamond", Adj: "Diamond", Rarity: Epic},
	{Name: "of the Ancients", Adj: "Primeval", Rarity: Epic},
	{Name: "of Crystal", Adj: "Crystalline", Rarity: Epic},
	{Name: "of the Depths", Adj: "Abyssal", Rarity: Epic},
	{Name: "of the Cosmos", Adj: "Cosmic", Rarity: Legendary},
	{Name: "of Eternity", Adj: "Eternal", Rarity: Legendary},
	{Name: "of Truth", Adj: "True", Rarity: Legendary},
	{Name: "of Light", Adj: "Radiant", Rarity: Legendary},
}

const LootBoxID = "loot_box"

var ShopItems = []ShopItem{
	{ID: LootBoxID, Name: "Mystery Crate", Type: TypeSpecial, PriceCents: 50000, Icon: "🎁"},

	{ID: "bg_neon", Name: "Neon City", Type: TypeBackground, PriceCents: 50000, Icon: "🌆"},
	{ID: "bg_space", Name: "Deep Space", Type: TypeBackground, PriceCents: 100000, Icon: "🌌"},
	{ID: "bg_matrix", Name: "The Matrix", Type: TypeBackground, PriceCents: 250000, Icon: "💻"},
	{ID: "bg_gold", Name: "Solid Gold", Type: TypeBackground, PriceCents: 1000000, Icon: "👑"},
	{ID: "bg_nature", Name: "Zen Garden", Type: TypeBackground, PriceCents: 75000, Icon: "🎋"},

	{ID: "title_shark", Name: "Loan Shark", Type: TypeTitle, PriceCents: 100000, Icon: "🦈"},
	{ID: "title_whale", Name: "Market Whale", Type: TypeTitle, PriceCents: 500000, Icon: "🐋"},
	{ID: "title_diamond", Name: "Diamond Hands", Type: TypeTitle, PriceCents: 200000, Icon: "💎"},
	{ID: "title_rocket", Name: "To The Moon", Type: TypeTitle, PriceCents: 50000, Icon: "🚀"},
	{ID: "title_historian", Name: "Time Traveler", Type: TypeTitle, PriceCents: 150000, Icon: "⏳"},

	{ID: "dec_plant", Name: "Potted Plant", Type: TypeDecoration, PriceCents: 15000, Icon: "🪴", Channels: []Channel{ChannelShop, ChannelDrop}},
	{ID: "dec_lamp", Name: "Lava Lamp", Type: TypeDecoration, PriceCents: 30000, Icon: "💡", Channels: []Channel{ChannelShop, ChannelDrop}},
	{ID: "dec_map", Name: "Vintage Map", Type: TypeDecoration, PriceCents: 50000, Icon: "🗺️", Channels: []Channel{ChannelShop, ChannelDrop}},
	{ID: "dec_gaming", Name: "Gaming Setup", Type: TypeDecoration, PriceCents: 250000, Icon: "🎮", Channels: []Channel{ChannelShop, ChannelDrop}},
	{ID: "dec_books", Name: "Stack of Books", Type: TypeDecoration, PriceCents: 20000, Icon: "📚", Channels: []Channel{ChannelShop, ChannelDrop}},
	{ID: "dec_trophy", Name: "Gold Trophy", Type: TypeDecoration, PriceCents: 100000, Icon: "🏆", Channels: []Channel{ChannelShop, ChannelDrop}},
	{ID: "dec_globe", Name: "World Globe", Type: TypeDecoration, PriceCents: 40000, Icon: "🌍", Channels: []Channel{ChannelShop, ChannelDrop}},

	{ID: "pet_cat", Name: "Pixel Cat", Type: TypeDecoration, PriceCents: 120000, Icon: "🐱", Channels: []Channel{ChannelShop, ChannelDrop}},
	{ID: "pet_dog", Name: "Pixel Dog", Type: TypeDecoration, PriceCents: 120000, Icon: "🐶", Channels: []Channel{ChannelShop, ChannelDrop}},
	{ID: "pet_dragon", Name: "Tiny Dragon", Type: TypeDecoration, PriceCents: 500000, Icon: "🐲", Channels: []Channel{ChannelShop, ChannelDrop}},

	{ID: "item_scroll", Name: "Ancient Scroll", Type: TypeDecoration, PriceCents: 80000, Icon: "📜", Channels: []Channel{ChannelDrop}},
	{ID: "item_quill", Name: "Scribe's Quill", Type: TypeDecoration, PriceCents: 40000, Icon: "✒️", Channels: []Channel{ChannelDrop}},
	{ID: "item_compass", Name: "Brass Compass", Type: TypeDecoration, PriceCents: 60000, Icon: "🧭", Channels: []Channel{ChannelDrop}},
	{ID: "item_telescope", Name: "Star Telescope", Type: TypeDecoration, PriceCents: 120000, Icon: "🔭", Channels: []Channel{ChannelDrop}},
	{ID: "item_hourglass", Name: "Hourglass", Type: TypeDecoration, PriceCents: 50000, Icon: "⏳", Channels: []Channel{ChannelDrop}},
	{ID: "item_scales", Name: "Scales of Justice", Type: TypeDecoration, PriceCents: 150000, Icon: "⚖️", Channels: []Channel{ChannelDrop}},
	{ID: "item_hammer", Name: "Builder's Hammer", Type: TypeDecoration, PriceCents: 30000, Icon: "🔨", Channels: []Channel{ChannelDrop}},
	{ID: "item_shield", Name: "Shield of Faith", Type: TypeDecoration, PriceCents: 200000, Icon: "🛡️", Channels: []Channel{ChannelDrop}},
	{ID: "item_sword", Name: "Sword of Spirit", Type: TypeDecoration, PriceCents: 250000, Icon: "⚔️", Channels: []Channel{ChannelDrop}},
	{ID: "item_helmet", Name: "Helmet of Salvation", Type: TypeDecoration, PriceCents: 220000, Icon: "⛑️", Channels: []Channel{ChannelDrop}},
	{ID: "item_crown", Name: "Royal Crown", Type: TypeDecoration, PriceCents: 500000, Icon: "👑", Channels: []Channel{ChannelDrop}},
	{ID: "item_harp", Name: "Golden Harp", Type: TypeDecoration, PriceCents: 180000, Icon: "🎵", Channels: []Channel{ChannelDrop}},
	{ID: "item_tablet", Name: "Stone Tablet", Type: TypeDecoration, PriceCents: 100000, Icon: "🗿", Channels: []Channel{ChannelDrop}},
	{ID: "item_lamp_oil", Name: "Oil Lamp", Type: TypeDecoration, PriceCents: 40000, Icon: "🪔", Channels: []Channel{ChannelDrop}},
	{ID: "item_bread", Name: "Loaf of Bread", Type: TypeDecoration, PriceCents: 10000, Icon: "🍞", Channels: []Channel{ChannelDrop}},
	{ID: "item_fish", Name: "Fresh Fish", Type: TypeDecoration, PriceCents: 10000, Icon: "🐟", Channels: []Channel{ChannelDrop}},
	{ID: "item_wheat", Name: "Bundle of Wheat", Type: TypeDecoration, PriceCents: 15000, Icon: "🌾", Channels: []Channel{ChannelDrop}},
	{ID: "item_grapes", Name: "Cluster of Grapes", Type: TypeDecoration, PriceCents: 20000, Icon: "🍇", Channels: []Channel{ChannelDrop}},
	{ID: "item_pottery", Name: "Clay Pot", Type: TypeDecoration, PriceCents: 30000, Icon: "🏺", Channels: []Channel{ChannelDrop}},
	{ID: "item_key", Name: "Iron Key", Type: TypeDecoration, PriceCents: 50000, Icon: "🗝️", Channels: []Channel{ChannelDrop}},
	{ID: "item_candle", Name: "Wax Candle", Type: TypeDecoration, PriceCents: 10000, Icon: "🕯️", Channels: []Channel{ChannelDrop}},
	{ID: "item_bell", Name: "Church Bell", Type: TypeDecoration, PriceCents: 80000, Icon: "🔔", Channels: []Channel{ChannelDrop}},
	{ID: "item_anchor", Name: "Ship Anchor", Type: TypeDecoration, PriceCents: 120000, Icon: "⚓", Channels: []Channel{ChannelDrop}},
	{ID: "item_wheel", Name: "Ship Wheel", Type: TypeDecoration, PriceCents: 150000, Icon: "☸️", Channels: []Channel{ChannelDrop}},
	{ID: "item_chest", Name: "Treasure Chest", Type: TypeDecoration, PriceCents: 300000, Icon: "🧳", Channels: []Channel{ChannelDrop}},

	{ID: "item_book_wisdom", Name: "Book of Wisdom", Type: TypeDecoration, PriceCents: 100000, Icon: "📖", Channels: []Channel{ChannelLesson}},
	{ID: "item_scroll_truth", Name: "Scroll of Truth", Type: TypeDecoration, PriceCents: 120000, Icon: "📜", Channels: []Channel{ChannelLesson}},
	{ID: "item_pen_knowledge", Name: "Pen of Knowledge", Type: TypeDecoration, PriceCents: 80000, Icon: "🖊️", Channels: []Channel{ChannelLesson}},
	{ID: "item_glasses_insight", Name: "Glasses of Insight", Type: TypeDecoration, PriceCents: 150000, Icon: "👓", Channels: []Channel{ChannelLesson}},
	{ID: "item_globe_discovery", Name: "Globe of Discovery", Type: TypeDecoration, PriceCents: 200000, Icon: "🌎", Channels: []Channel{ChannelLesson}},
	{ID: "item_torch_enlightenment", Name: "Torch of Enlightenment", Type: TypeDecoration, PriceCents: 250000, Icon: "🔥", Channels: []Channel{ChannelLesson}},
	{ID: "item_medal_honor", Name: "Medal of Honor", Type: TypeDecoration, PriceCents: 300000, Icon: "🎖️", Channels: []Channel{ChannelLesson}},
	{ID: "item_diploma", Name: "Ancient Diploma", Type: TypeDecoration, PriceCents: 500000, Icon: "🎓", Channels: []Channel{ChannelLesson}},
}

var Buildings = map[string]Building{
	"res_tent":    {ID: "res_tent", Name: "Tent", Type: BuildingResidential, CostCents: 10000, Icon: "⛺", Slots: 4},
	"res_shack":   {ID: "res_shack", Name: "Wooden Shack", Type: BuildingResidential, CostCents: 50000, Icon: "🏚️", Slots: 6},
	"res_cabin":   {ID: "res_cabin", Name: "Log Cabin", Type: BuildingResidential, CostCents: 150000, Icon: "🛖", Slots: 8},
	"res_house":   {ID: "res_house", Name: "Brick House", Type: BuildingResidential, CostCents: 250000, Icon: "🏡", Slots: 12},
	"res_villa":   {ID: "res_villa", Name: "Modern Villa", Type: BuildingResidential, CostCents: 500000, Icon: "🏘️", Slots: 16},
	"res_mansion": {ID: "res_mansion", Name: "Neon Mansion", Type: BuildingResidential, CostCents: 1000000, Icon: "🏰", Slots: 24},
	"res_palace":  {ID: "res_palace", Name: "Crystal Palace", Type: BuildingResidential, CostCents: 5000000, Icon: "🏯", Slots: 32},

	"com_stand":   {ID: "com_stand", Name: "Lemonade Stand", Type: BuildingCommercial, CostCents: 20000, Icon: "🍋", DailyIncome: 1000, VisitFeeCents: 200},
	"com_store":   {ID: "com_store", Name: "Corner Store", Type: BuildingCommercial, CostCents: 100000, Icon: "🏪", DailyIncome: 5000, VisitFeeCents: 1000},
	"com_cafe":    {ID: "com_cafe", Name: "Cyber Cafe", Type: BuildingCommercial, CostCents: 250000, Icon: "☕", DailyIncome: 10000, VisitFeeCents: 2500},
	"com_arcade":  {ID: "com_arcade", Name: "Cyber Arcade", Type: BuildingCommercial, CostCents: 500000, Icon: "🕹️", DailyIncome: 20000, VisitFeeCents: 5000},
	"com_cinema":  {ID: "com_cinema", Name: "Holo-Cinema", Type: BuildingCommercial, CostCents: 1000000, Icon: "🍿", DailyIncome: 50000, VisitFeeCents: 10000},
	"com_tower":   {ID: "com_tower", Name: "Tech Tower", Type: BuildingCommercial, CostCents: 2000000, Icon: "🏢", DailyIncome: 100000, VisitFeeCents: 20000},
	"com_stadium": {ID: "com_stadium", Name: "Mega Stadium", Type: BuildingCommercial, CostCents: 10000000, Icon: "🏟️", DailyIncome: 500000, VisitFeeCents: 100000},
}

// House is a residence tier. Moving in is free and charges daily rent;
// buying outright costs PriceCents and stops the rent.
type House struct {
	ID         string
	Name       string
	RentCents  int64 // per day while rented
	PriceCents int64
	Icon       string
	Desc       string
}

var Houses = []House{
	{ID: "h_box", Name: "Cardboard Box", RentCents: 0, PriceCents: 0, Icon: "📦", Desc: "It's free, but it's soggy."},
	{ID: "h_tent", Name: "Backyard Tent", RentCents: 1000, PriceCents: 50000, Icon: "⛺", Desc: "Fresh air! Watch out for bugs."},
	{ID: "h_studio", Name: "Studio Apartment", RentCents: 5000, PriceCents: 500000, Icon: "🏢", Desc: "Cozy. Includes running water."},
	{ID: "h_house", Name: "Suburban House", RentCents: 15000, PriceCents: 2500000, Icon: "🏡", Desc: "White picket fence included."},
	{ID: "h_mansion", Name: "Luxury Mansion", RentCents: 50000, PriceCents: 10000000, Icon: "🏰", Desc: "Live like a king."},
	{ID: "h_castle", Name: "Historic Castle", RentCents: 200000, PriceCents: 100000000, Icon: "🏯", Desc: "Comes with a ghost."},
}

// HousingRent maps rentable residence tiers to their daily rent in cents.
// Rent stops once the residence is owned outright.
var HousingRent = map[string]int64{
	"h_box":     0,
	"h_tent":    1000,
	"h_studio":  5000,
	"h_house":   15000,
	"h_mansion": 50000,
	"h_castle":  200000,
}

// Validate checks the invariants the loot roll depends on. Called once
// at process start; a broken table is a deploy error, not a runtime case.
func Validate() error {
	var sum float64
	for _, r := range RarityOrder {
		tier, ok := Rarities[r]
		if !ok {
			return fmt.Errorf("rarity %q missing from table", r)
		}
		if tier.Chance <= 0 || tier.Multiplier <= 0 {
			return fmt.Errorf("rarity %q has non-positive chance or multiplier", r)
		}
		sum += tier.Chance
	}
	const epsilon = 1e-9
	if sum < 1.0-epsilon || sum > 1.0+epsilon {
		return fmt.Errorf("rarity chances sum to %v, want 1.0", sum)
	}
	seen := make(map[string]struct{}, len(ShopItems))
	for _, item := range ShopItems {
		if item.ID == "" || item.PriceCents <= 0 {
			return fmt.Errorf("shop item %q has empty id or non-positive price", item.Name)
		}
		if _, dup := seen[item.ID]; dup {
			return fmt.Errorf("duplicate shop item id %q", item.ID)
		}
		seen[item.ID] = struct{}{}
	}
	for _, s := range Suffixes {
		if _, ok := Rarities[s.Rarity]; !ok {
			return fmt.Errorf("suffix %q references unknown rarity %q", s.Name, s.Rarity)
		}
	}
	for _, h := range Houses {
		rent, ok := HousingRent[h.ID]
		if !ok || rent != h.RentCents {
			return fmt.Errorf("house %q rent disagrees with housing rent table", h.ID)
		}
	}
	return nil
}

// HouseByID returns the residence tier for id, or false when id is unknown.
func HouseByID(id string) (House, bool) {
	for _, h := range Houses {
		if h.ID == id {
			return h, true
		}
	}
	return House{}, false
}

// ItemByID returns the shop item for id, or false when id is unknown.
func ItemByID(id string) (ShopItem, bool) {
	for _, item := range ShopItems {
		if item.ID == id {
			return item, true
		}
	}
	return ShopItem{}, false
}

// PoolFor returns the items obtainable through the given channel. An
// item with no channel tags is implicitly shop-only.
func PoolFor(ch Channel) []ShopItem {
	var out []ShopItem
	for _, item := range ShopItems {
		if ch == ChannelShop && len(item.Channels) == 0 {
			out = append(out, item)
			continue
		}
		for _, c := range item.Channels {
			if c == ch {
				out = append(out, item)
				break
			}
		}
	}
	return out
}

// SuffixesFor returns the suffixes tagged with the given rarity.
func SuffixesFor(r Rarity) []Suffix {
	var out []Suffix
	for _, s := range Suffixes {
		if s.Rarity == r {
			out = append(out, s)
		}
	}
	return out
}

func BuildingByID(id string) (Building, bool) {
	b, ok := Buildings[id]
	return b, ok
}
