package ecommerce

import "leadflow-workers/internal/models"

const shopURL = "https://shop.leadflow.ro/produs/"

func product(id, name, category string, price float64) models.Product {
	return models.Product{ID: id, Name: name, Category: category, Price: price, URL: shopURL + id}
}

var catalog = map[string][]models.Product{
	"Fashion": {
		product("fa-101", "Geacă din denim", "Fashion", 189),
		product("fa-102", "Tricou din bumbac organic", "Fashion", 39),
		product("fa-103", "Sneakers urban", "Fashion", 279),
		product("fa-104", "Eșarfă din mătase", "Fashion", 45),
		product("fa-105", "Curea din piele", "Fashion", 29),
		product("fa-106", "Rochie de vară", "Fashion", 129),
	},
	"Electronice": {
		product("el-201", "Căști wireless", "Electronice", 249),
		product("el-202", "Boxă portabilă", "Electronice", 119),
		product("el-203", "Smartwatch", "Electronice", 699),
		product("el-204", "Încărcător rapid", "Electronice", 45),
		product("el-205", "Tabletă 10 inch", "Electronice", 1199),
	},
	"Casă & Grădină": {
		product("cg-301", "Set ghivece ceramice", "Casă & Grădină", 69),
		product("cg-302", "Lampă solară de grădină", "Casă & Grădină", 35),
		product("cg-303", "Aspirator robot", "Casă & Grădină", 899),
		product("cg-304", "Set lenjerie de pat", "Casă & Grădină", 179),
	},
	"Beauty": {
		product("be-401", "Ser facial cu vitamina C", "Beauty", 89),
		product("be-402", "Paletă de farduri", "Beauty", 59),
		product("be-403", "Parfum eau de parfum", "Beauty", 349),
		product("be-404", "Balsam de buze", "Beauty", 19),
	},
}

// catalogFor returns the products for a category, Fashion for unknown categories.
func catalogFor(category string) []models.Product {
	if products, ok := catalog[category]; ok {
		return products
	}
	return catalog[categoryFashion]
}
