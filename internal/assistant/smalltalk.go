package assistant

import (
	"regexp"
	"strings"
)

const (
	GreetingReply  = "Hello! Welcome to our jewelry store. How can I help you today?"
	ThanksReply    = "You're welcome! Let me know if there's anything else I can help you find."
	IdentityReply  = "I'm the store's virtual shopping assistant. I can help you find jewelry, check prices and availability, and answer questions about our store."
	WellbeingReply = "I'm doing great, thanks for asking! What can I help you find today?"
	JokeReply      = "Why did the ring go to school? It wanted to be a little more polished!"
	WeatherReply   = "I can't check the weather, but our jewelry shines in any season. Can I help you find something?"
	FarewellReply  = "Goodbye! Thanks for visiting, and come back soon."
)

// Each pattern must cover the whole message so that "hi, show me rings"
// still reaches the classifier.
const (
	smallTalkPrefix = `(?i)^\s*`
	smallTalkSuffix = `(\s+(there|bot|assistant|again|everyone))?[\s!.,?]*$`
)

type smallTalkEntry struct {
	re    *regexp.Regexp
	reply string
}

var smallTalk = []smallTalkEntry{
	{regexp.MustCompile(smallTalkPrefix + `(hi|hello|hey|hiya|howdy|greetings|good (morning|afternoon|evening))` + smallTalkSuffix), GreetingReply},
	{regexp.MustCompile(smallTalkPrefix + `(thanks|thank you|thank you so much|thanks a lot|thx|ty)` + smallTalkSuffix), ThanksReply},
	{regexp.MustCompile(smallTalkPrefix + `(who are you|what are you|what is your name|what's your name|are you (a )?(bot|robot|human|real))` + smallTalkSuffix), IdentityReply},
	{regexp.MustCompile(smallTalkPrefix + `(how are you|how are you doing|how's it going)` + smallTalkSuffix), WellbeingReply},
	{regexp.MustCompile(smallTalkPrefix + `((tell me )?a joke|tell me something funny|make me laugh)` + smallTalkSuffix), JokeReply},
	{regexp.MustCompile(smallTalkPrefix + `(what's|what is|how's|how is) the weather( (today|like))?` + smallTalkSuffix), WeatherReply},
	{regexp.MustCompile(smallTalkPrefix + `(bye|goodbye|good bye|see you|see ya|later)` + smallTalkSuffix), FarewellReply},
}

// SmallTalk returns a canned reply when the whole message is social chatter.
func SmallTalk(query string) (string, bool) {
	q := strings.TrimSpace(query)
	if q == "" {
		return "", false
	}
	for _, e := range smallTalk {
		if e.re.MatchString(q) {
			return e.reply, true
		}
	}
	return "", false
}
