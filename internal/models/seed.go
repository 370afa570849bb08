package models

// SeedItems is the sample catalog published when no live data source is
// configured or reachable.
func SeedItems() []Item {
	return []Item{
		{
			ID:               "seed-1",
			Name:             "Classic Oxford Shirt",
			Type:             ItemTypeShirt,
			Description:      "Crisp white cotton oxford with a button-down collar. Works dressed up or down.",
			CoverImage:       "https://placehold.co/600x800.png",
			AdditionalImages: []string{"https://placehold.co/600x800.png", "https://placehold.co/600x800.png"},
			AIHint:           "white shirt",
		},
		{
			ID:               "seed-2",
			Name:             "Slim Fit Chinos",
			Type:             ItemTypePant,
			Description:      "Khaki stretch-cotton chinos with a tapered leg.",
			CoverImage:       "https://placehold.co/600x800.png",
			AdditionalImages: []string{"https://placehold.co/600x800.png"},
			AIHint:           "khaki pants",
		},
		{
			ID:               "seed-3",
			Name:             "Leather Chelsea Boots",
			Type:             ItemTypeShoes,
			Description:      "Dark brown leather Chelsea boots with elastic side panels.",
			CoverImage:       "https://placehold.co/600x800.png",
			AdditionalImages: []string{},
			AIHint:           "brown boots",
		},
		{
			ID:               "seed-4",
			Name:             "Trail Running Shoes",
			Type:             ItemTypeSportsGear,
			Description:      "Lightweight trail runners with a grippy outsole and breathable mesh upper.",
			CoverImage:       "https://placehold.co/600x800.png",
			AdditionalImages: []string{"https://placehold.co/600x800.png"},
			AIHint:           "running shoes",
		},
		{
			ID:               "seed-5",
			Name:             "Woven Leather Belt",
			Type:             ItemTypeAccessory,
			Description:      "Tan braided leather belt with a brushed silver buckle.",
			CoverImage:       "https://placehold.co/600x800.png",
			AdditionalImages: []string{},
			AIHint:           "leather belt",
		},
		{
			ID:               "seed-6",
			Name:             "Navy Wool Blazer",
			Type:             ItemTypeOther,
			Description:      "Unstructured navy wool blazer with patch pockets.",
			CoverImage:       "https://placehold.co/600x800.png",
			AdditionalImages: []string{"https://placehold.co/600x800.png"},
			AIHint:           "navy blazer",
		},
	}
}
