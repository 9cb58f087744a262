package model

// WeightClass is a display label for a weight band. It never affects pairing.
type WeightClass string

// Weight classes, upper bounds inclusive.
const (
	Flyweight        WeightClass = "Flyweight"
	Lightweight      WeightClass = "Lightweight"
	Welterweight     WeightClass = "Welterweight"
	Middleweight     WeightClass = "Middleweight"
	LightHeavyweight WeightClass = "Light Heavyweight"
	Heavyweight      WeightClass = "Heavyweight"
)

var weightBands = []struct {
	upTo  float64
	class WeightClass
}{
	{50, Flyweight},
	{60, Lightweight},
	{70, Welterweight},
	{80, Middleweight},
	{90, LightHeavyweight},
}

// WeightClassFor returns the class for kg.
func WeightClassFor(kg float64) WeightClass {
	for _, b := range weightBands {
		if kg <= b.upTo {
			return b.class
		}
	}
	return Heavyweight
}
