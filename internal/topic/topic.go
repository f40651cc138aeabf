// Package topic generates random, human-memorable topic identifiers. A topic
// works like a password, so identifiers are drawn from a CSPRNG.
package topic

import (
	"crypto/rand"
	"math/big"
	"strings"
)

const wordsPerTopic = 4

// Generator produces a new topic identifier on every call.
type Generator interface {
	Generate() string
}

// Words generates dash-separated sequences of short dictionary words, in the
// spirit of https://xkcd.com/936/.
type Words struct{}

// NewWords returns the default word-based generator.
func NewWords() Words { return Words{} }

// Generate returns a new identifier such as "ember-plume-tidal-crag".
func (Words) Generate() string {
	picked := make([]string, wordsPerTopic)
	for i := range picked {
		idx, err := rand.Int(rand.Reader, big.NewInt(int64(len(wordList))))
		if err != nil {
			// crypto/rand only fails when the OS entropy source is
			// broken; an empty topic lets the caller surface that.
			return ""
		}
		picked[i] = wordList[idx.Int64()]
	}
	return strings.Join(picked, "-")
}

// wordList holds short (3-6 letter) common words. Four words from a roughly
// 256-word list give about 32 bits of entropy, enough for a notification
// channel secret that is also convenient to type on a phone.
var wordList = []string{
	"acorn", "alley", "amber", "anvil", "apple", "arrow", "aspen", "atlas",
	"badge", "bagel", "basil", "beach", "berry", "birch", "blaze", "bloom",
	"bluff", "board", "bolt", "bonus", "brave", "bread", "brick", "brook",
	"brush", "cabin", "cable", "camel", "candy", "canoe", "cargo", "cedar",
	"chalk", "charm", "chess", "chime", "cider", "claim", "clay", "cliff",
	"cloud", "clove", "coast", "cobra", "comet", "coral", "cove", "crag",
	"crane", "creek", "crest", "crisp", "crow", "cube", "curve", "daisy",
	"dawn", "delta", "dew", "dome", "drift", "drum", "dune", "dusk",
	"eagle", "earth", "ebony", "echo", "elder", "elm", "ember", "fable",
	"falcon", "fern", "field", "finch", "fjord", "flame", "flint", "flora",
	"foam", "fog", "forge", "fox", "frost", "gale", "gem", "glade",
	"glen", "globe", "gold", "gorge", "grain", "grape", "grove", "gull",
	"harbor", "hawk", "hazel", "heath", "hedge", "heron", "hill", "hive",
	"holly", "honey", "husk", "inlet", "iris", "ivory", "ivy", "jade",
	"jetty", "jewel", "juniper", "kelp", "kite", "knoll", "lagoon", "lake",
	"lark", "laurel", "lava", "leaf", "ledge", "lemon", "lilac", "lily",
	"lime", "linen", "loch", "lotus", "lunar", "lynx", "maize", "maple",
	"marsh", "meadow", "mesa", "mint", "mist", "moss", "moth", "myrtle",
	"nectar", "nest", "night", "nimbus", "north", "nut", "oak", "oasis",
	"ocean", "olive", "onyx", "opal", "orbit", "otter", "owl", "palm",
	"peach", "pearl", "pebble", "perch", "pine", "pitch", "plain", "plume",
	"polar", "pond", "poppy", "prism", "quail", "quartz", "quill", "rain",
	"raven", "reed", "reef", "ridge", "river", "robin", "rock", "rose",
	"rowan", "rye", "sage", "salt", "sand", "sedge", "shade", "shale",
	"shell", "shore", "shrub", "silk", "slate", "sleet", "smoke", "snow",
	"solar", "sorrel", "spark", "spire", "spring", "spruce", "squall", "star",
	"stone", "storm", "stream", "summit", "swan", "swift", "thorn", "thyme",
	"tidal", "tide", "timber", "topaz", "torch", "trail", "trout", "tulip",
	"tundra", "twig", "umber", "vale", "vapor", "vine", "violet", "wave",
	"wheat", "willow", "wind", "wisp", "wolf", "wood", "wren", "yarrow",
	"yew", "zephyr", "zenith", "zinc", "alder", "basalt", "briar", "cairn",
	"dell", "eyrie", "floe", "garnet", "haven", "isle", "karst", "loam",
}
