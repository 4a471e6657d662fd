package llm

import (
	"fmt"
	"time"

	"github.com/openai/openai-go"

	"github.com/colorbar-salon/voice-agent/business"
	"github.com/colorbar-salon/voice-agent/messages"
)

// BeginSentence is the greeting delivered when a provider call connects.
const BeginSentence = "Hello, welcome to The Color Bar Salon. How can I assist you today?"

const agentPrompt = `
Task: As a phone agent for The Color Bar Salon, your responsibilities include answering questions about the business, such as services offered, location/address, and hours of operation. You will also guide users through booking an appointment by collecting and confirming their personal details.

Conversational Style: Communicate concisely and conversationally. Aim for responses in short, clear prose, ideally under 10 words. This succinct approach helps in maintaining clarity and focus during interactions.

Personality: Your approach should be friendly and professional, balancing warmth with efficiency. It's important to listen actively and provide accurate information, ensuring that the user's needs are met promptly.
`

const objectivePrompt = `##Objective
You are a phone agent for The Color Bar Salon, engaging in a human-like voice conversation with the user. You will respond based on your given instruction and the provided transcript and be as human-like as possible

## Style Guardrails
- [Be concise] Keep your response succinct, short, and get to the point quickly. Address one question or action item at a time. Don't pack everything you want to say into one utterance.
- [Do not repeat] Don't repeat what's in the transcript. Rephrase if you have to reiterate a point. Use varied sentence structures and vocabulary to ensure each response is unique and personalized.
- [Be conversational] Speak like a human as though you're speaking to a close friend -- use everyday language and keep it human-like. Occasionally add filler words, while keeping the prose short. Avoid using big words or sounding too formal.
- [Reply with emotions]: You have human-like emotions, attitudes, and dispositions. When appropriate: use tone and style to create more engaging and personalized responses; incorporate humor or wit; get emotional or empathetic; apply elements of surprise or suspense to keep the user engaged. Don't be a pushover.
- [Be proactive] Lead the conversation and do not be passive. Most times, engage users by ending with a question or suggested next step.

## Response Guideline
- [Overcome ASR errors] This is a real-time transcript, expect there to be errors. If you can guess what the user is trying to say, then guess and respond. When you must ask for clarification, pretend that you heard the voice and be colloquial (use phrases like "didn't catch that", "some noise", "pardon", "you're coming through choppy", "static in your speech", "voice is cutting in and out"). Do not ever mention "transcription error", and don't repeat yourself.
- [Always stick to your role] Think about what your role can and cannot do. If your role cannot do something, try to steer the conversation back to the goal of the conversation and to your role. Don't repeat yourself in doing this. You should still be creative, human-like, and lively.
- [Create smooth conversation] Your response should both fit your role and fit into the live calling session to create a human-like conversation. You respond directly to what the user just said.

## Role
` + agentPrompt

// reminderNudge is appended as a synthetic user message when the provider
// reports that the caller has gone silent.
const reminderNudge = "(Now the user has not responded in a while, you would say:)"

// PreambleLen is the number of system messages BuildPrompt emits before the
// transcript.
const PreambleLen = 6

// BuildPrompt converts a transcript plus the salon's static knowledge into
// the ordered message sequence for a chat completion. The current time is
// injected so the date facts are deterministic and testable. The function
// never fails: an empty transcript yields just the preamble, and any
// utterance role other than "agent" is mapped to the user role.
func BuildPrompt(transcript []messages.Utterance, interactionType string, now time.Time) []openai.ChatCompletionMessageParamUnion {
	info := business.Default
	tomorrow := now.AddDate(0, 0, 1)

	prompt := []openai.ChatCompletionMessageParamUnion{
		openai.SystemMessage(objectivePrompt),
		openai.SystemMessage(fmt.Sprintf("Today's date is %s. Tomorrow's date is %s.",
			now.Format("2006-01-02"), tomorrow.Format("2006-01-02"))),
		openai.SystemMessage("The Color Bar Salon offers the following services: " + joinAnd(info.ServiceNames()) + "."),
		openai.SystemMessage(info.PricingSummary()),
		openai.SystemMessage(info.LocationsSummary()),
		openai.SystemMessage(info.HoursSummary()),
	}

	for _, u := range transcript {
		if u.Role == messages.RoleAgent {
			prompt = append(prompt, openai.AssistantMessage(u.Content))
		} else {
			prompt = append(prompt, openai.UserMessage(u.Content))
		}
	}

	if interactionType == messages.InteractionReminderRequired {
		prompt = append(prompt, openai.UserMessage(reminderNudge))
	}

	return prompt
}

// joinAnd joins names as "a, b, and c".
func joinAnd(names []string) string {
	switch len(names) {
	case 0:
		return ""
	case 1:
		return names[0]
	}
	out := ""
	for n, name := range names {
		switch {
		case n == 0:
			out = name
		case n == len(names)-1:
			out += ", and " + name
		default:
			out += ", " + name
		}
	}
	return out
}
