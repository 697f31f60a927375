// Package taxonomy holds the canonical wardrobe vocabulary and the pure
// normalization and matching functions that map vision-model output onto
// it. Nothing in this package performs I/O.
package taxonomy

// Canonical lowercase category keys used on stored wardrobe items.
const (
	CategoryTops        = "tops"
	CategoryBottoms     = "bottoms"
	CategoryOuterwear   = "outerwear"
	CategoryShoes       = "shoes"
	CategoryAccessories = "accessories"
	CategoryDresses     = "dresses"
)

// DefaultDetectionCategory replaces any category value the vision model
// returns outside the allowed set.
const DefaultDetectionCategory = "Tops"

// DetectionCategories are the Title-Case category values the vision model
// is instructed to choose from. Activewear has no storage bucket of its
// own and normalizes to tops.
var DetectionCategories = []string{
	"Tops",
	"Bottoms",
	"Outerwear",
	"Shoes",
	"Accessories",
	"Dresses",
	"Activewear",
}

// ColorPalette is the canonical proper-cased color vocabulary. Colors the
// model names outside this palette are dropped during normalization.
var ColorPalette = []string{
	"Black",
	"White",
	"Gray",
	"Navy",
	"Blue",
	"Light Blue",
	"Red",
	"Burgundy",
	"Pink",
	"Purple",
	"Green",
	"Olive",
	"Yellow",
	"Mustard",
	"Orange",
	"Brown",
	"Tan",
	"Beige",
	"Cream",
	"Khaki",
	"Gold",
	"Silver",
}

// SubCategories lists the canonical sub-category names per category key.
var SubCategories = map[string][]string{
	CategoryTops: {
		"T-Shirt",
		"Shirt",
		"Blouse",
		"Polo",
		"Tank Top",
		"Sweater",
		"Cardigan",
		"Hoodie",
		"Sweatshirt",
		"Crop Top",
		"Long Sleeve",
	},
	CategoryBottoms: {
		"Jeans",
		"Trousers",
		"Chinos",
		"Shorts",
		"Skirt",
		"Leggings",
		"Joggers",
		"Sweatpants",
		"Cargo Pants",
	},
	CategoryOuterwear: {
		"Jacket",
		"Coat",
		"Blazer",
		"Parka",
		"Trench Coat",
		"Denim Jacket",
		"Leather Jacket",
		"Bomber",
		"Puffer",
		"Vest",
		"Raincoat",
	},
	CategoryShoes: {
		"Sneakers",
		"Boots",
		"Loafers",
		"Heels",
		"Sandals",
		"Flats",
		"Oxfords",
		"Running Shoes",
		"Slippers",
	},
	CategoryAccessories: {
		"Bag",
		"Backpack",
		"Belt",
		"Hat",
		"Cap",
		"Scarf",
		"Gloves",
		"Sunglasses",
		"Watch",
		"Jewelry",
		"Tie",
	},
	CategoryDresses: {
		"Mini Dress",
		"Midi Dress",
		"Maxi Dress",
		"Cocktail Dress",
		"Sundress",
		"Shirt Dress",
		"Wrap Dress",
		"Evening Dress",
		"Jumpsuit",
	},
}
