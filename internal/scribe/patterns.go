package scribe

import "regexp"

// end closes a captured fragment: a sentence stop, a clause break, a
// conjunction, a line break (one line per finalized speech chunk) or the
// end of the text. Only the last alternative is zero-width.
const end = `(?:\.(?:\s|$)|[,;\n]|[ \t]+(?:and|also)\b|$)`

func clause(triggers string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)\b(?:` + triggers + `)\b[ \t]+(.+?)` + end)
}

// clauseUnless is clause for triggers that also end longer phrases owned
// by another section. A match of shadow consumes the text without a
// capture, so "past history of asthma" is not read as "history of asthma".
func clauseUnless(shadow, triggers string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)\b(?:(?:` + shadow + `)\b|(?:` + triggers + `)\b[ \t]+(.+?)` + end + `)`)
}

// phrase keeps the trigger in the captured fragment, for triggers that are
// findings themselves ("chest pain radiating to the arm").
func phrase(triggers string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)\b((?:` + triggers + `)\b.*?)` + end)
}

var (
	namePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\bpatient(?:'s)?[ \t]+name[ \t]+is[ \t]+([a-z]+(?:[ \t]+[a-z]+)*)`),
		regexp.MustCompile(`(?i)\bmy[ \t]+name[ \t]+is[ \t]+([a-z]+(?:[ \t]+[a-z]+)*)`),
		regexp.MustCompile(`(?i)\bname[ \t]+is[ \t]+([a-z]+(?:[ \t]+[a-z]+)*)`),
		regexp.MustCompile(`(?i)\bcalled[ \t]+([a-z]+(?:[ \t]+[a-z]+)*)`),
		regexp.MustCompile(`(?i)\bthis[ \t]+is[ \t]+([a-z]+(?:[ \t]+[a-z]+)*)`),
		regexp.MustCompile(`(?i)\b(?:i[ \t]+am|i'm)[ \t]+([a-z]+(?:[ \t]+[a-z]+)*)`),
	}

	agePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\b(?:patient(?:'s)?|my)[ \t]+age[ \t]+(?:is[ \t]+)?(\d{1,3})\b`),
		regexp.MustCompile(`(?i)\baged?[ \t]+(?:is[ \t]+)?(\d{1,3})\b`),
		regexp.MustCompile(`(?i)\b(\d{1,3})[ \t-]*years?[ \t-]*old\b`),
		regexp.MustCompile(`(?i)\b(?:i[ \t]+am|i'm)[ \t]+(\d{1,3})\b`),
	}

	genderPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\b(?:i[ \t]+am[ \t]+an?|i'm[ \t]+an?|gender[ \t]+is|sex[ \t]+is|patient[ \t]+is[ \t]+an?)[ \t]+(male|female|man|woman|boy|girl)\b`),
		regexp.MustCompile(`(?i)\b\d{1,3}[ \t-]*years?[ \t-]*old[ \t]+(male|female|man|woman|boy|girl)\b`),
	}
)

// Words that end a spoken name ("my name is John and I am 45").
var nameStopWords = map[string]bool{
	"a": true, "an": true, "and": true, "the": true, "i": true, "is": true,
	"am": true, "im": true, "aged": true, "age": true, "years": true, "year": true,
	"old": true, "with": true, "who": true, "from": true, "here": true,
	"having": true, "has": true, "have": true, "complains": true,
	"complaining": true, "suffering": true, "feeling": true, "male": true,
	"female": true, "man": true, "woman": true, "boy": true, "girl": true,
	"my": true, "also": true, "but": true, "not": true, "very": true,
	"so": true, "in": true, "on": true, "at": true, "for": true, "to": true,
	"doctor": true, "dr": true, "patient": true, "sick": true, "fine": true,
	"came": true, "presenting": true, "going": true, "okay": true, "ok": true,
}

const maxNameWords = 4

var sectionSpecs = []sectionSpec{
	{
		Section: ChiefComplaint,
		MinLen:  3,
		Patterns: []*regexp.Regexp{
			clause(`chief[ \t]+complaint|main[ \t]+complaint|presenting[ \t]+complaint|complains?[ \t]+of|came[ \t]+with|here[ \t]+for`),
			clause(`patient[ \t]+(?:says|reports|complains)|suffering[ \t]+from|problem[ \t]+(?:is|with)`),
			phrase(`pain[ \t]+in|headache|fever|cough|breathing[ \t]+difficulty|chest[ \t]+pain|abdominal[ \t]+pain`),
		},
	},
	{
		Section: HistoryOfPresentIllness,
		MinLen:  5,
		Patterns: []*regexp.Regexp{
			clause(`started|began|since|for[ \t]+the[ \t]+past|been[ \t]+having`),
			clause(`duration|timing|onset|frequency`),
			clauseUnless(`(?:past|medical|family)[ \t]+history`, `history`),
			clause(`associated[ \t]+with|along[ \t]+with|accompanied[ \t]+by`),
		},
	},
	{
		Section: PastMedicalHistory,
		MinLen:  3,
		Patterns: []*regexp.Regexp{
			clause(`past[ \t]+history(?:[ \t]+of)?|previous|earlier|before|known[ \t]+case[ \t]+of|diagnosed[ \t]+with`),
			phrase(`diabetes|hypertension|heart[ \t]+disease|surgery|operation|allerg(?:y|ies)`),
			clause(`taking[ \t]+medications?|on[ \t]+treatment`),
		},
	},
	{
		Section: Examination,
		MinLen:  3,
		Patterns: []*regexp.Regexp{
			clause(`on[ \t]+examination|physical[ \t]+exam(?:ination)?|findings|appears?|looks?`),
			phrase(`blood[ \t]+pressure|pulse|temperature|respiratory[ \t]+rate`),
			phrase(`heart[ \t]+sounds?|lung[ \t]+sounds?|abdomen|neurological`),
		},
	},
	{
		Section: Diagnosis,
		MinLen:  3,
		Patterns: []*regexp.Regexp{
			clause(`diagnosis(?:[ \t]+is)?|diagnosed[ \t]+as|impression(?:[ \t]+is)?|likely|probable|rule[ \t]+out`),
			clause(`(?:condition|disease|disorder|syndrome)(?:[ \t]+is)?`),
		},
	},
	{
		Section: Treatment,
		MinLen:  3,
		Patterns: []*regexp.Regexp{
			clause(`treatment|management|therapy|prescribed?|give|start`),
			clause(`medications?|drugs?`),
			phrase(`tablets?|capsules?|syrup|injection`),
			clause(`advice|advised|recommend|suggest`),
		},
	},
	{
		Section: FollowUp,
		MinLen:  2,
		Patterns: []*regexp.Regexp{
			clause(`follow[ \t-]?up|next[ \t]+visit|come[ \t]+back|review|return`),
			regexp.MustCompile(`(?i)\b((?:after|in)[ \t]+\d+[ \t]+(?:days?|weeks?|months?))\b`),
			regexp.MustCompile(`(?i)\b((?:if|when)[ \t]+.+?)[ \t]+(?:call|contact|visit)\b`),
		},
	},
}
