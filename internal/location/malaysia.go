package location

import "github.com/healthshield/mentions-bot/internal/models"

// Malaysia is the gazetteer of Malaysian states, federal territories and their districts.
var Malaysia = NewGazetteer([]State{
	{Name: "Johor", Districts: []string{
		"Batu Pahat", "Johor Bahru", "Kluang", "Kota Tinggi", "Kulai", "Mersing",
		"Muar", "Pontian", "Segamat", "Tangkak",
	}},
	{Name: "Kedah", Districts: []string{
		"Baling", "Bandar Baharu", "Kota Setar", "Kuala Muda", "Kubang Pasu",
		"Kulim", "Langkawi", "Padang Terap", "Pendang", "Pokok Sena", "Sik", "Yan",
	}},
	{Name: "Kelantan", Districts: []string{
		"Bachok", "Gua Musang", "Jeli", "Kota Bharu", "Kuala Krai", "Machang",
		"Pasir Mas", "Pasir Puteh", "Tanah Merah", "Tumpat",
	}},
	{Name: "Melaka", Districts: []string{"Alor Gajah", "Jasin", "Melaka Tengah"}},
	{Name: "Negeri Sembilan", Districts: []string{
		"Jelebu", "Jempol", "Kuala Pilah", "Port Dickson", "Rembau", "Seremban", "Tampin",
	}},
	{Name: "Pahang", Districts: []string{
		"Bentong", "Bera", "Cameron Highlands", "Jerantut", "Kuantan", "Lipis",
		"Maran", "Pekan", "Raub", "Rompin", "Temerloh",
	}},
	{Name: "Perak", Districts: []string{
		"Bagan Datuk", "Batang Padang", "Hilir Perak", "Hulu Perak", "Kampar",
		"Kerian", "Kinta", "Kuala Kangsar", "Larut Matang dan Selama", "Manjung",
		"Muallim", "Perak Tengah",
	}},
	{Name: "Perlis", Districts: []string{"Kangar", "Arau", "Padang Besar"}},
	{Name: "Pulau Pinang", Districts: []string{
		"Timur Laut", "Barat Daya", "Seberang Perai Utara", "Seberang Perai Tengah",
		"Seberang Perai Selatan",
	}},
	{Name: "Selangor", Districts: []string{
		"Gombak", "Hulu Langat", "Hulu Selangor", "Klang", "Kuala Langat",
		"Kuala Selangor", "Petaling", "Sabak Bernam", "Sepang",
	}},
	{Name: "Terengganu", Districts: []string{
		"Besut", "Dungun", "Hulu Terengganu", "Kemaman", "Kuala Terengganu",
		"Marang", "Setiu",
	}},
	{Name: "Sabah", Districts: []string{
		"Beaufort", "Beluran", "Keningau", "Kota Belud", "Kota Kinabalu", "Kota Marudu",
		"Kuala Penyu", "Kudat", "Kunak", "Lahad Datu", "Nabawan", "Papar", "Penampang",
		"Pitas", "Ranau", "Sandakan", "Semporna", "Sipitang", "Tambunan", "Tawau",
		"Telupid", "Tenom", "Tongod", "Tuaran", "Putatan",
	}},
	{Name: "Sarawak", Districts: []string{
		"Betong", "Bintulu", "Kapit", "Kuching", "Limbang", "Miri", "Mukah",
		"Samarahan", "Sarikei", "Serian", "Sibu", "Sri Aman",
	}},
	{Name: "Kuala Lumpur", Districts: []string{"Kuala Lumpur"}},
	{Name: "Putrajaya", Districts: []string{"Putrajaya"}},
	{Name: "Labuan", Districts: []string{"Labuan"}},
}, map[string]string{
	"penang": "Pulau Pinang",
})

// Unresolved is written by metadata cleanup when no state can be resolved.
// It is a placeholder, not a gazetteer entry.
var Unresolved = models.Location{State: "Malaysia"}

// Normalize resolves against the Malaysia gazetteer.
func Normalize(state, district string) (string, string) {
	return Malaysia.Normalize(state, district)
}

// NormalizeLocation is Normalize returning a location, false when nothing resolved.
func NormalizeLocation(state, district string) (models.Location, bool) {
	s, d := Malaysia.Normalize(state, district)
	loc := models.Location{State: s, District: d}
	return loc, !loc.IsEmpty()
}
