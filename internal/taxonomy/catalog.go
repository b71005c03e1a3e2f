package taxonomy

// Division is a KBLI two-digit division under a section category.
type Division struct {
	Code     string   `json:"code"`
	Name     string   `json:"name"`
	Keywords []string `json:"keywords"`
}

// Category is a KBLI section with its divisions.
type Category struct {
	Code      string     `json:"code"`
	Name      string     `json:"name"`
	Divisions []Division `json:"divisions"`
}

// CatalogMetadata describes the catalog provenance.
type CatalogMetadata struct {
	Source string   `json:"source"`
	Level  string   `json:"level"`
	Notes  []string `json:"notes"`
}

// Catalog is the full category/division listing served to clients.
type Catalog struct {
	Metadata   CatalogMetadata `json:"metadata"`
	Categories []Category      `json:"categories"`
}

// kbliCategories is a static snapshot of the KBLI 2020 sections used for
// business classification, trimmed to the divisions relevant for GL analysis.
var kbliCategories = []Category{
	{
		Code: "A", Name: "Pertanian, Kehutanan dan Perikanan",
		Divisions: []Division{
			{Code: "01", Name: "Pertanian Tanaman, Peternakan", Keywords: []string{"pertanian", "tanaman", "peternakan", "perkebunan"}},
			{Code: "03", Name: "Perikanan", Keywords: []string{"perikanan", "ikan", "tambak", "budidaya"}},
		},
	},
	{
		Code: "C", Name: "Industri Pengolahan",
		Divisions: []Division{
			{Code: "10", Name: "Industri Makanan", Keywords: []string{"makanan", "pangan", "pengolahan", "produksi"}},
			{Code: "13", Name: "Industri Tekstil", Keywords: []string{"tekstil", "kain", "benang", "garmen"}},
			{Code: "25", Name: "Industri Barang Logam", Keywords: []string{"logam", "baja", "fabrikasi", "mesin"}},
		},
	},
	{
		Code: "F", Name: "Konstruksi",
		Divisions: []Division{
			{Code: "41", Name: "Konstruksi Gedung", Keywords: []string{"konstruksi", "gedung", "bangunan", "kontraktor"}},
			{Code: "42", Name: "Konstruksi Sipil", Keywords: []string{"jalan", "jembatan", "infrastruktur", "sipil"}},
		},
	},
	{
		Code: "G", Name: "Perdagangan Besar dan Eceran",
		Divisions: []Division{
			{Code: "46", Name: "Perdagangan Besar", Keywords: []string{"grosir", "distributor", "perdagangan besar", "supplier"}},
			{Code: "47", Name: "Perdagangan Eceran", Keywords: []string{"eceran", "retail", "toko", "minimarket"}},
		},
	},
	{
		Code: "I", Name: "Akomodasi dan Penyediaan Makan Minum",
		Divisions: []Division{
			{Code: "55", Name: "Penyediaan Akomodasi", Keywords: []string{"hotel", "penginapan", "akomodasi", "villa"}},
			{Code: "56", Name: "Penyediaan Makanan dan Minuman", Keywords: []string{"restoran", "katering", "kafe", "warung"}},
		},
	},
	{
		Code: "J", Name: "Informasi dan Komunikasi",
		Divisions: []Division{
			{Code: "62", Name: "Aktivitas Pemrograman Komputer", Keywords: []string{"software", "pemrograman", "aplikasi", "teknologi informasi"}},
			{Code: "63", Name: "Aktivitas Jasa Informasi", Keywords: []string{"data", "hosting", "portal", "informasi"}},
		},
	},
	{
		Code: "K", Name: "Aktivitas Keuangan dan Asuransi",
		Divisions: []Division{
			{Code: "64", Name: "Jasa Keuangan", Keywords: []string{"bank", "pembiayaan", "keuangan", "kredit"}},
			{Code: "65", Name: "Asuransi dan Dana Pensiun", Keywords: []string{"asuransi", "premi", "dana pensiun", "polis"}},
		},
	},
	{
		Code: "M", Name: "Aktivitas Profesional, Ilmiah dan Teknis",
		Divisions: []Division{
			{Code: "69", Name: "Aktivitas Hukum dan Akuntansi", Keywords: []string{"hukum", "akuntansi", "audit", "notaris", "pajak"}},
			{Code: "70", Name: "Aktivitas Konsultasi Manajemen", Keywords: []string{"konsultan", "manajemen", "advisory"}},
			{Code: "71", Name: "Aktivitas Arsitektur dan Keinsinyuran", Keywords: []string{"arsitek", "engineering", "desain", "survey"}},
		},
	},
	{
		Code: "L", Name: "Real Estat",
		Divisions: []Division{
			{Code: "68", Name: "Real Estat", Keywords: []string{"properti", "sewa gedung", "real estat", "apartemen"}},
		},
	},
}

// KBLICatalog returns the static category catalog.
func KBLICatalog() Catalog {
	return Catalog{
		Metadata: CatalogMetadata{
			Source: "KBLI 2020",
			Level:  "section/division",
			Notes: []string{
				"Static snapshot, updated only with regulatory revisions",
				"Division keywords are used for business-type hints only",
			},
		},
		Categories: kbliCategories,
	}
}

// FindCategory returns the category with the given code.
func FindCategory(code string) (Category, bool) {
	for _, c := range kbliCategories {
		if c.Code == code {
			return c, true
		}
	}
	return Category{}, false
}

// ParentCategory returns the category code owning the given division code.
func ParentCategory(divisionCode string) (string, bool) {
	for _, c := range kbliCategories {
		for _, d := range c.Divisions {
			if d.Code == divisionCode {
				return c.Code, true
			}
		}
	}
	return "", false
}
