package domain

type RuleStrength string

const (
	StrengthVeryStrong RuleStrength = "very_strong"
	StrengthStrong     RuleStrength = "strong"
	StrengthWeak       RuleStrength = "weak"
	StrengthNegative   RuleStrength = "negative"
)

type RuleLevel string

const (
	RuleLevelItem     RuleLevel = "item"
	RuleLevelCategory RuleLevel = "category"
)

// AssociationRule is antecedent -> consequent. Item rules carry product ids,
// category rules carry category names.
type AssociationRule struct {
	Level               RuleLevel    `json:"level"`
	AntecedentProductID uint64       `json:"antecedent_product_id,omitempty"`
	ConsequentProductID uint64       `json:"consequent_product_id,omitempty"`
	AntecedentCategory  string       `json:"antecedent_category,omitempty"`
	ConsequentCategory  string       `json:"consequent_category,omitempty"`
	PairCount           int          `json:"pair_count"`
	Support             float64      `json:"support"`
	Confidence          float64      `json:"confidence"`
	Lift                float64      `json:"lift"`
	Strength            RuleStrength `json:"strength"`
	Positive            bool         `json:"positive"`
}

type PlacementAdvice string

const (
	AdviceCoLocate     PlacementAdvice = "co_locate"
	AdviceNeutral      PlacementAdvice = "neutral"
	AdviceKeepSeparate PlacementAdvice = "keep_separate"
)

type ProximityTier string

const (
	ProximityAdjacent ProximityTier = "adjacent"
	ProximitySameZone ProximityTier = "same_zone"
	ProximityNearby   ProximityTier = "nearby"
	ProximityDistant  ProximityTier = "distant"
)

// CategoryAffinity is an unordered category pair; CategoryA < CategoryB.
type CategoryAffinity struct {
	CategoryA string          `json:"category_a"`
	CategoryB string          `json:"category_b"`
	MeanLift  float64         `json:"mean_lift"`
	Affinity  float64         `json:"affinity"`
	PairCount int             `json:"pair_count"`
	Advice    PlacementAdvice `json:"advice"`
	Proximity ProximityTier   `json:"proximity"`
}

type AssociationAnalysis struct {
	StoreID            uint64             `json:"store_id"`
	WindowDays         int                `json:"window_days"`
	TotalTransactions  int                `json:"total_transactions"`
	TotalLineItems     int                `json:"total_line_items"`
	ItemRules          []AssociationRule  `json:"item_rules"`
	CategoryRules      []AssociationRule  `json:"category_rules"`
	CategoryAffinities []CategoryAffinity `json:"category_affinities"`
	DataQuality        DataQuality        `json:"data_quality"`
}

func EmptyAssociationAnalysis(storeID uint64, windowDays int, reason string) AssociationAnalysis {
	return AssociationAnalysis{
		StoreID:            storeID,
		WindowDays:         windowDays,
		ItemRules:          []AssociationRule{},
		CategoryRules:      []AssociationRule{},
		CategoryAffinities: []CategoryAffinity{},
		DataQuality:        DataQuality{Sufficient: false, Reason: reason},
	}
}

// AffinityBetween looks up the unordered category pair.
func (a AssociationAnalysis) AffinityBetween(c1, c2 string) (CategoryAffinity, bool) {
	if c1 > c2 {
		c1, c2 = c2, c1
	}
	for _, ca := range a.CategoryAffinities {
		if ca.CategoryA == c1 && ca.CategoryB == c2 {
			return ca, true
		}
	}
	return CategoryAffinity{}, false
}
