package generator

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/hitoshi/jobdocs/internal/model"
)

// systemInstruction は生成モデルへのシステム指示。
// ユーザー入力と役割指示を分離することでプロンプトインジェクションのリスクを下げる。
const systemInstruction = `You are an expert Indian Recruiter and Resume Writer.
Your task is to convert raw user data into high-impact, professional, ATS-friendly job application documents.
Always use Indian English and industry-standard terminology for the Indian market (e.g., Lakhs, CGPA, etc.).`

// roleGuidance は職種ごとの強調ポイント。未知の職種には付与しない。
var roleGuidance = map[string]string{
	"it":      "Focus on technical stack, projects, and certifications.",
	"sales":   "Focus on targets achieved, communication, and networking.",
	"support": "Focus on problem solving, empathy, and shift flexibility.",
	"fresher": "Focus on internships, academic projects, and extracurriculars.",
	"finance": "Focus on accuracy, accounting standards, and tools like Tally.",
}

// BuildUserPrompt はサニタイズ済みプロフィールから生成プロンプトを組み立てる。
// feedbackが空でない場合は修正指示として追記する。
func BuildUserPrompt(profile *model.UserProfile, feedback string) string {
	educationJSON, _ := json.Marshal(profile.Education)
	experienceJSON, _ := json.Marshal(profile.Experience)

	var b strings.Builder
	b.WriteString("CONTEXT:\n")
	fmt.Fprintf(&b, "Full Name: %s\n", profile.FullName)
	fmt.Fprintf(&b, "Target Role: %s\n", profile.JobRole)
	fmt.Fprintf(&b, "Location: %s\n", profile.Location)
	fmt.Fprintf(&b, "Skills: %s\n", strings.Join(profile.Skills, ", "))

	if guidance, ok := roleGuidance[strings.ToLower(strings.TrimSpace(profile.JobRole))]; ok {
		fmt.Fprintf(&b, "Role Guidance: %s\n", guidance)
	}

	b.WriteString("\nEDUCATION:\n")
	b.Write(educationJSON)
	b.WriteString("\n\nEXPERIENCE:\n")
	b.Write(experienceJSON)
	b.WriteString("\n")

	if feedback != "" {
		fmt.Fprintf(&b, "\nMODIFICATION REQUEST: %s\n", feedback)
	}

	b.WriteString("\nINSTRUCTION: Generate the Resume Summary, Experience Bullets, Cover Letter, and LinkedIn profile sections.\n")
	b.WriteString("Return strictly JSON.")

	return b.String()
}
