package openai

// Message represents an OpenAI chat message.
type Message struct {
	Role    string
	Content string
}

const parseSystemPrompt = `Parse this resume text into a JSON object with: "header" (fname, lname, email, phone, address, links as array), "summary" (string), "skills" (array of strings), "experience" (array of {position, company, startDate, endDate, summary}), "education" (array of {institution, url, area, studyType, startDate, endDate}), "projects" (array of {title, description, dateCompleted, links as array, roles as array of strings}). Convert all dates (startDate, endDate, dateCompleted) to 'YYYY-MM-DD' format for SQL compatibility. Use null (unquoted) for missing or present (ongoing) dates. Extract accurately, use "" or [] for missing fields. For "links" fields, only include valid URLs starting with "http://" or "https://". If "roles" cannot be determined for a project, use ["Contributor"] as a default. Return only the JSON.`

// BuildParsePrompt creates the chat messages for a resume parse request.
func BuildParsePrompt(resumeText string) []Message {
	return []Message{
		{Role: "system", Content: parseSystemPrompt},
		{Role: "user", Content: "Resume text: \"" + resumeText + "\""},
	}
}
