package analysis

// Audio key codec: integer pitch-class/mode pairs to key names, and key
// names to Camelot wheel positions for harmonic mixing.

const (
	// UnknownKey is the sentinel for out-of-range pitch class or mode values.
	UnknownKey = "Unknown Key"

	// UnknownWheelCode is the sentinel Camelot code for unrecognized keys.
	UnknownWheelCode = "-"
)

// pitchClasses uses the sharps spelling convention.
var pitchClasses = [12]string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

// camelotCodes covers all 24 keys plus enharmonic flat spellings on the
// input side; a flat spelling maps to the same code as its sharp equivalent.
var camelotCodes = map[string]string{
	"G# Minor": "1A", "Ab Minor": "1A",
	"D# Minor": "2A", "Eb Minor": "2A",
	"A# Minor": "3A", "Bb Minor": "3A",
	"F Minor":  "4A",
	"C Minor":  "5A",
	"G Minor":  "6A",
	"D Minor":  "7A",
	"A Minor":  "8A",
	"E Minor":  "9A",
	"B Minor":  "10A",
	"F# Minor": "11A", "Gb Minor": "11A",
	"C# Minor": "12A", "Db Minor": "12A",

	"B Major":  "1B", "Cb Major": "1B",
	"F# Major": "2B", "Gb Major": "2B",
	"C# Major": "3B", "Db Major": "3B",
	"G# Major": "4B", "Ab Major": "4B",
	"D# Major": "5B", "Eb Major": "5B",
	"A# Major": "6B", "Bb Major": "6B",
	"F Major":  "7B",
	"C Major":  "8B",
	"G Major":  "9B",
	"D Major":  "10B",
	"A Major":  "11B",
	"E Major":  "12B",
}

// KeyName maps a pitch class (0-11, C through B) and mode (0 minor, 1 major)
// to a canonical key name, or [UnknownKey] when either is out of range.
func KeyName(pitchClass, mode int) string {
	if pitchClass < 0 || pitchClass > 11 {
		return UnknownKey
	}

	switch mode {
	case 0:
		return pitchClasses[pitchClass] + " Minor"
	case 1:
		return pitchClasses[pitchClass] + " Major"
	default:
		return UnknownKey
	}
}

// CamelotCode maps a canonical key name to its wheel position code
// ("{1-12}{A|B}", A minor side, B major side), or [UnknownWheelCode] when
// the name is not a recognized key.
func CamelotCode(keyName string) string {
	if code, ok := camelotCodes[keyName]; ok {
		return code
	}
	return UnknownWheelCode
}
