// Package scoring evaluates call transcripts along behavioral dimensions
// with a generative scorer and persists the results. One generic worker
// type serves every dimension; the dimensions themselves are data.
package scoring

import "fmt"

// Dimension describes one independently scored behavioral axis: its name,
// its 1-5 rubric and the key the scorer must use for the score.
type Dimension struct {
	Name   string
	Rubric string
}

// ScoreKey returns the mandated JSON key for this dimension's score.
func (d Dimension) ScoreKey() string {
	return d.Name + "_score"
}

// SubscriptionName returns the durable subscription name for this
// dimension's worker.
func (d Dimension) SubscriptionName() string {
	return "assess." + d.Name
}

// Dimensions is the fixed set of scored dimensions.
var Dimensions = []Dimension{
	{
		Name: "politeness",
		Rubric: "Your goal is to ensure that agents are polite and treat customers well. " +
			"You score agents on politeness using a scale from 1 to 5 where 1 is very impolite and 5 is extremely polite. " +
			"Especially for agents who don't perform well, you will provide a detailed reasoning for the score.",
	},
	{
		Name: "empathy",
		Rubric: "Your goal is to ensure agents express understanding, concern, and support toward customers. " +
			"You score agents on empathy using a scale from 1 to 5, where 1 is lacking empathy and 5 is highly empathetic. " +
			"Analyze the call transcript and provide an empathy score with a brief reasoning.",
	},
	{
		Name: "professionalism",
		Rubric: "Your goal is to assess the agent's level of professionalism. " +
			"Focus on whether the agent maintains a respectful and courteous tone, avoids inappropriate or dismissive language, " +
			"and communicates in a clear and service-oriented manner. " +
			"Pay close attention to the agent's word choice, tone consistency, and ability to remain composed throughout the interaction. " +
			"You score agents on professionalism using a scale from 1 to 5, where 1 is unprofessional and 5 is highly professional.",
	},
}

// SystemPrompt builds the system instruction for this dimension: the
// rubric plus the mandated strict-JSON response contract.
func (d Dimension) SystemPrompt() string {
	return fmt.Sprintf(
		"You are a call center manager evaluating the performance of your agents. "+
			"%s "+
			"You will also provide a brief summary of the call. "+
			"The summary should include the main points of the conversation and any issues that were raised. "+
			"The summary should be concise and to the point. "+
			"Respond ONLY with a valid JSON object of the form "+
			`{"%s": <score>, "summary": <summary>, "reasoning": <reasoning>}. `+
			"Use double quotes for all keys and string values. "+
			"Do NOT include any explanations, markdown formatting like ```json, or extra text.",
		d.Rubric, d.ScoreKey(),
	)
}

// UserPrompt builds the user instruction carrying the transcript.
func (d Dimension) UserPrompt(transcript string) string {
	return fmt.Sprintf("Transcript:\n%s\n\n%s score and reasoning:", transcript, d.Name)
}
