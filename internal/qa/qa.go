// Package qa serves comprehension prompts for the reader.
package qa

// Question pairs a prompt with its reference answer.
type Question struct {
	Prompt string
	Answer string
}

// Placeholder prompts. They are not derived from the document text.
var defaultQuestions = []Question{
	{Prompt: "Give me insights related to this chapter's topic.", Answer: "Insightful answer"},
	{Prompt: "What challenges might be faced regarding this topic?", Answer: "Challenging answer"},
	{Prompt: "What points are worth noting about this topic?", Answer: "Noteworthy answer"},
	{Prompt: "Describe this topic from multiple points of view.", Answer: "Multi-faceted answer"},
	{Prompt: "How else could you ask about this topic?", Answer: "Alternative answer"},
	{Prompt: "How should I ask about this topic using better word choices?", Answer: "Improved answer"},
	{Prompt: "What would a deeper understanding of this topic involve?", Answer: "Deeper answer"},
	{Prompt: "How does this topic connect to what you already know?", Answer: "Connected answer"},
	{Prompt: "Summarize this topic in one sentence.", Answer: "Summary answer"},
}

// Deck hands out questions in order and refills itself when exhausted.
type Deck struct {
	source  []Question
	pending []Question
}

// NewDeck returns a deck over qs, or over the built-in prompts when qs is empty.
func NewDeck(qs ...Question) *Deck {
	if len(qs) == 0 {
		qs = defaultQuestions
	}
	return &Deck{source: append([]Question(nil), qs...)}
}

// Next pops the front question, refilling the deck first when it is empty.
func (d *Deck) Next() Question {
	if len(d.pending) == 0 {
		d.pending = append(d.pending[:0], d.source...)
	}
	q := d.pending[0]
	d.pending = d.pending[1:]
	return q
}

// Remaining returns how many questions are left before the next refill.
func (d *Deck) Remaining() int {
	return len(d.pending)
}

// Size returns the number of questions per round.
func (d *Deck) Size() int {
	return len(d.source)
}
