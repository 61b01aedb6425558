package catalog

import "testing"

func TestValidate(t *testing.T) {
	if err := Validate(); err != nil {
		t.Fatalf("catalog failed validation: %v", err)
	}
}

func TestRarityChancesSumToOne(t *testing.T) {
	var sum float64
	for _, tier := range Rarities {
		sum += tier.Chance
	}
	if sum < 0.999999 || sum > 1.000001 {
		t.Fatalf("rarity chances sum to %v", sum)
	}
}

func TestSuffixCoverage(t *testing.T) {
	for _, r := range RarityOrder {
		got := SuffixesFor(r)
		if len(got) != 4 {
			t.Fatalf("rarity %s has %d suffixes, want 4", r, len(got))
		}
	}
}

func TestPoolFor(t *testing.T) {
	for _, ch := range []Channel{ChannelShop, ChannelDrop, ChannelLesson} {
		pool := PoolFor(ch)
		if len(pool) == 0 {
			t.Fatalf("channel %s has empty pool", ch)
		}
		for _, item := range pool {
			found := ch == ChannelShop && len(item.Channels) == 0
			for _, c := range item.Channels {
				if c == ch {
					found = true
				}
			}
			if !found {
				t.Fatalf("item %s in pool for %s but not tagged with it", item.ID, ch)
			}
		}
	}
	shop := PoolFor(ChannelShop)
	hasLootBox := false
	for _, item := range shop {
		if item.ID == LootBoxID {
			hasLootBox = true
		}
	}
	if !hasLootBox {
		t.Fatalf("shop pool missing the loot box")
	}
	lesson := PoolFor(ChannelLesson)
	for _, item := range lesson {
		if item.Type != TypeDecoration {
			t.Fatalf("lesson pool contains non-decoration %s", item.ID)
		}
	}
}

func TestItemByID(t *testing.T) {
	item, ok := ItemByID(LootBoxID)
	if !ok {
		t.Fatalf("loot box missing from catalog")
	}
	if item.Type != TypeSpecial {
		t.Fatalf("loot box has type %s", item.Type)
	}
	if _, ok := ItemByID("nope"); ok {
		t.Fatalf("unknown id resolved")
	}
}

func TestHousing(t *testing.T) {
	box, ok := HouseByID("h_box")
	if !ok || box.RentCents != 0 || box.PriceCents != 0 {
		t.Fatalf("unexpected h_box definition: %+v", box)
	}
	for _, h := range Houses {
		if HousingRent[h.ID] != h.RentCents {
			t.Fatalf("house %s rent disagrees with rent table", h.ID)
		}
	}
	if _, ok := HouseByID("h_castle"); !ok {
		t.Fatalf("h_castle missing")
	}
}

func TestBuildings(t *testing.T) {
	b, ok := BuildingByID("com_stand")
	if !ok {
		t.Fatalf("com_stand missing")
	}
	if b.Type != BuildingCommercial || b.DailyIncome != 1000 || b.VisitFeeCents != 200 {
		t.Fatalf("unexpected com_stand definition: %+v", b)
	}
	res, ok := BuildingByID("res_palace")
	if !ok || res.Type != BuildingResidential || res.Slots != 32 {
		t.Fatalf("unexpected res_palace definition: %+v", res)
	}
}
