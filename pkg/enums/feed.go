package enums

import "slices"

// AnimalType identifies the livestock a feed product is formulated for.
type AnimalType string

const (
	AnimalTypePig    AnimalType = "PIG"
	AnimalTypeCattle AnimalType = "CATTLE"
)

var animalTypes = []AnimalType{AnimalTypePig, AnimalTypeCattle}

func (a AnimalType) String() string { return string(a) }
func (a AnimalType) IsValid() bool  { return slices.Contains(animalTypes, a) }

func ParseAnimalType(value string) (AnimalType, error) {
	return parse("animal type", animalTypes, value)
}

// FeedType identifies the growth stage a feed product targets.
type FeedType string

const (
	FeedTypeStarter   FeedType = "STARTER"
	FeedTypeGrower    FeedType = "GROWER"
	FeedTypeFinisher  FeedType = "FINISHER"
	FeedTypeGestation FeedType = "GESTATION"
	FeedTypeLactating FeedType = "LACTATING"
)

var feedTypes = []FeedType{
	FeedTypeStarter,
	FeedTypeGrower,
	FeedTypeFinisher,
	FeedTypeGestation,
	FeedTypeLactating,
}

func (f FeedType) String() string { return string(f) }
func (f FeedType) IsValid() bool  { return slices.Contains(feedTypes, f) }

func ParseFeedType(value string) (FeedType, error) {
	return parse("feed type", feedTypes, value)
}
