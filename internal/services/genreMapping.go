package services

// broadGenreTable maps each broad category to the specific Spotify genre
// labels that belong to it. The vocabulary was assembled from genres observed
// on artists in real libraries and lags Spotify's full list; unclassified
// labels are ignored rather than rejected.
var broadGenreTable = map[string][]string{
	"Rock": {
		"rock", "classic rock", "hard rock", "soft rock", "album rock",
		"art rock", "blues rock", "garage rock", "glam rock", "psychedelic rock",
		"progressive rock", "southern rock", "surf rock", "rock and roll",
		"roots rock", "yacht rock", "rockabilly", "grunge", "post-grunge",
	},
	"Alternative": {
		"alternative rock", "indie rock", "dream pop", "shoegaze", "post-punk",
		"new wave", "britpop", "emo", "lo-fi", "madchester", "slowcore",
		"noise rock", "post-rock", "math rock", "alternative dance",
		"indietronica", "grungegaze", "jangle pop",
	},
	"Punk": {
		"punk", "punk rock", "pop punk", "hardcore punk", "skate punk",
		"ska punk", "anarcho-punk", "oi", "crust punk", "horror punk",
	},
	"Metal": {
		"metal", "heavy metal", "thrash metal", "death metal", "black metal",
		"doom metal", "power metal", "progressive metal", "nu metal",
		"metalcore", "deathcore", "sludge metal", "speed metal",
		"symphonic metal", "alternative metal", "groove metal", "djent",
	},
	"Pop": {
		"pop", "dance pop", "indie pop", "synth-pop", "synthpop", "electropop",
		"art pop", "chamber pop", "baroque pop", "power pop", "bubblegum pop",
		"teen pop", "bedroom pop", "hyperpop", "europop", "sophisti-pop",
		"pop rock", "sunshine pop",
	},
	"Hip Hop": {
		"hip hop", "rap", "trap", "gangster rap", "conscious hip hop",
		"east coast hip hop", "west coast rap", "southern hip hop",
		"alternative hip hop", "underground hip hop", "boom bap", "drill",
		"cloud rap", "grime", "uk hip hop", "lo-fi hip hop",
	},
	"R&B": {
		"r&b", "rhythm and blues", "contemporary r&b", "neo soul", "soul",
		"motown", "funk", "quiet storm", "new jack swing", "alternative r&b",
		"northern soul", "southern soul", "psychedelic soul",
	},
	"Electronic": {
		"electronic", "electronica", "house", "deep house", "tech house",
		"progressive house", "techno", "minimal techno", "trance", "dubstep",
		"drum and bass", "jungle", "breakbeat", "idm", "ambient", "downtempo",
		"trip hop", "big beat", "edm", "future bass", "garage", "uk garage",
		"electro", "synthwave", "vaporwave", "chillwave",
	},
	"Jazz": {
		"jazz", "smooth jazz", "vocal jazz", "cool jazz", "bebop", "hard bop",
		"free jazz", "jazz fusion", "swing", "big band", "bossa nova",
		"latin jazz", "acid jazz", "nu jazz", "gypsy jazz",
	},
	"Blues": {
		"blues", "chicago blues", "delta blues", "electric blues",
		"country blues", "texas blues", "modern blues",
	},
	"Classical": {
		"classical", "baroque", "romantic", "opera", "orchestral", "symphony",
		"chamber music", "contemporary classical", "minimalism",
		"neoclassical", "early music", "choral", "modern classical",
	},
	"Country": {
		"country", "classic country", "contemporary country", "outlaw country",
		"country rock", "alt-country", "americana", "bluegrass", "honky tonk",
		"nashville sound", "red dirt", "texas country",
	},
	"Folk": {
		"folk", "folk rock", "indie folk", "freak folk", "traditional folk",
		"singer-songwriter", "acoustic pop", "celtic", "anti-folk",
		"chamber folk", "stomp and holler",
	},
	"Latin": {
		"latin", "latin pop", "reggaeton", "salsa", "bachata", "cumbia",
		"merengue", "banda", "corrido", "ranchera", "latin rock",
		"latin alternative", "tropical",
	},
	"Reggae": {
		"reggae", "roots reggae", "dancehall", "dub", "ska", "rocksteady",
		"reggae fusion",
	},
	"World": {
		"afrobeat", "afrobeats", "afropop", "highlife", "k-pop", "j-pop",
		"j-rock", "city pop", "bollywood", "bhangra", "flamenco", "fado",
		"klezmer", "balkan brass", "mbalax", "soca", "zouk",
	},
	"Soundtrack": {
		"soundtrack", "film score", "video game music", "anime", "show tunes",
		"broadway", "movie tunes",
	},
	"Gospel": {
		"gospel", "christian", "contemporary christian", "worship",
		"southern gospel", "ccm",
	},
}

// ClassifyGenres is a convenience wrapper over the default classifier.
func ClassifyGenres(specificGenres []string) []string {
	return defaultClassifier.Classify(specificGenres)
}

var defaultClassifier = NewGenreClassifier()
