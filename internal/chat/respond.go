package chat

import (
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/adrg/strutil"
	"github.com/adrg/strutil/metrics"

	"github.com/sayeesck/portfolio-chatbot-go/internal/chat/search"
	"github.com/sayeesck/portfolio-chatbot-go/internal/profile"
	"github.com/sayeesck/portfolio-chatbot-go/internal/sliceutil"
	"github.com/sayeesck/portfolio-chatbot-go/internal/stringutil"
)

// topicProjectDetail keys the variant counter for project detail replies
// separately from the project list.
const topicProjectDetail Topic = -1

// Responder renders templated replies from the profile. Templates rotate
// per topic and session so repeated questions get different phrasing.
// Read-only after construction, safe to share across sessions.
type Responder struct {
	profile          *profile.Profile
	index            *search.ProjectIndex // optional keyword search over projects
	projectThreshold float64
	metric           *metrics.SorensenDice
	now              func() time.Time
}

// NewResponder creates a responder over a loaded profile.
// index may be nil; project lookup then relies on name similarity alone.
func NewResponder(p *profile.Profile, index *search.ProjectIndex, projectThreshold float64) *Responder {
	return &Responder{
		profile:          p,
		index:            index,
		projectThreshold: projectThreshold,
		metric:           metrics.NewSorensenDice(),
		now:              time.Now,
	}
}

// Generate produces a reply for an already-classified topic.
func (r *Responder) Generate(topic Topic, sess *Session) string {
	var variants []string

	switch topic {
	case TopicGreeting:
		variants = r.greetingVariants()
	case TopicFarewell:
		variants = r.farewellVariants()
	case TopicName:
		variants = r.nameVariants()
	case TopicHometown:
		variants = r.hometownVariants()
	case TopicLocation:
		variants = r.locationVariants()
	case TopicEducation:
		variants = r.educationVariants()
	case TopicInterests:
		variants = r.interestsVariants()
	case TopicLanguages:
		variants = r.languagesVariants()
	case TopicSkills:
		variants = r.skillsVariants()
	case TopicTools:
		variants = r.toolsVariants()
	case TopicContact:
		variants = r.contactVariants()
	case TopicExperience:
		variants = r.experienceVariants()
	case TopicCertifications:
		variants = r.certificationsVariants()
	case TopicTrading:
		variants = r.tradingVariants()
	case TopicHelp:
		return r.helpReply()
	case TopicInappropriate:
		return "Let's keep things professional. I'm happy to talk about " +
			r.profile.DisplayName() + "'s background, skills, and projects."
	default:
		variants = r.unknownVariants()
	}

	if len(variants) == 0 {
		return r.helpReply()
	}
	return variants[sess.nextVariant(topic, len(variants))]
}

// ProjectList renders one line per project in profile order plus a
// prompt asking which one to expand on.
func (r *Responder) ProjectList() string {
	names := r.profile.ProjectNames()
	if len(names) == 0 {
		return "I don't have any projects to share right now, but feel free to ask about " +
			r.profile.DisplayName() + "'s skills or education."
	}

	var b strings.Builder
	b.WriteString("Here are the projects I can tell you about:\n")
	for _, name := range names {
		b.WriteString("- ")
		b.WriteString(name)
		b.WriteString("\n")
	}
	b.WriteString("Which one would you like to hear more about?")
	return b.String()
}

// ProjectDetail fuzzy-matches free text against known project names and
// renders the winner's description. The boolean reports whether a
// project matched; on failure the reply guides the user back to the
// list. It never fails.
func (r *Responder) ProjectDetail(input string, sess *Session) (string, bool) {
	proj, ok := r.lookupProject(input)
	if !ok {
		return "I couldn't find that project. Try \"list projects\" to see what I can talk about.", false
	}

	tech := stringutil.JoinNatural(proj.Technologies, "a range of technologies")
	desc := stringutil.FirstNonEmpty(proj.Description, "one of "+r.profile.DisplayName()+"'s projects")

	variants := []string{
		fmt.Sprintf("One notable project is %s, %s. It was built with %s.", proj.Name, desc, tech),
		fmt.Sprintf("%s is %s. The stack behind it: %s.", proj.Name, desc, tech),
		fmt.Sprintf("Happy to share! %s is %s, developed using %s.", proj.Name, desc, tech),
	}
	return variants[sess.nextVariant(topicProjectDetail, len(variants))], true
}

// projectCandidate pairs a project name with a match score.
type projectCandidate struct {
	name  string
	score float64
}

// lookupProject merges name similarity with keyword search and returns
// the best candidate above the project threshold.
func (r *Responder) lookupProject(input string) (profile.Project, bool) {
	query := strings.ToLower(strings.TrimSpace(input))
	if query == "" {
		return profile.Project{}, false
	}

	var candidates []projectCandidate
	for _, proj := range r.profile.Projects {
		name := strings.ToLower(proj.Name)
		if strings.Contains(query, name) {
			candidates = append(candidates, projectCandidate{name: proj.Name, score: 1})
			continue
		}
		candidates = append(candidates, projectCandidate{
			name:  proj.Name,
			score: strutil.Similarity(query, name, r.metric),
		})
	}

	// Keyword search catches descriptive references like
	// "the doctor booking one".
	if r.index != nil && r.index.IsEnabled() {
		results, err := r.index.Search(query, 3)
		if err == nil {
			for _, res := range results {
				candidates = append(candidates, projectCandidate{
					name:  res.Name,
					score: float64(res.Confidence) * 0.9, // rank confidence, slightly discounted
				})
			}
		}
	}

	// Keep the best score per project name.
	best := make(map[string]float64, len(candidates))
	for _, c := range candidates {
		if c.score > best[c.name] {
			best[c.name] = c.score
		}
	}
	unique := sliceutil.Deduplicate(candidates, func(c projectCandidate) string { return c.name })

	var winner projectCandidate
	for _, c := range unique {
		score := best[c.name]
		if score > winner.score {
			winner = projectCandidate{name: c.name, score: score}
		}
	}

	if winner.score < r.projectThreshold {
		return profile.Project{}, false
	}
	return r.profile.FindProject(winner.name)
}

func (r *Responder) timeBasedGreeting() string {
	hour := r.now().Hour()
	switch {
	case hour < 12:
		return "Good morning!"
	case hour < 17:
		return "Good afternoon!"
	default:
		return "Good evening!"
	}
}

func (r *Responder) greetingVariants() []string {
	name := r.profile.DisplayName()
	return []string{
		r.timeBasedGreeting() + " I'm " + name + "'s portfolio assistant. How can I help you today?",
		"Hello! I'm here to share information about " + name + "'s professional background. What would you like to know?",
		"Hi there! I can tell you about " + name + "'s skills, education, and projects. How can I assist you?",
	}
}

func (r *Responder) farewellVariants() []string {
	name := r.profile.DisplayName()
	return []string{
		"It was great chatting with you! Feel free to come back if you have more questions.",
		"Goodbye! Don't hesitate to return if you'd like to know more about " + name + ".",
		"Talk to you later! Best of luck with your exploration of " + name + "'s portfolio.",
	}
}

func (r *Responder) nameVariants() []string {
	name := r.profile.DisplayName()
	role := stringutil.FirstNonEmpty(r.profile.Role, "a developer")
	return []string{
		fmt.Sprintf("I'm %s, %s.", name, lowerFirst(role)),
		fmt.Sprintf("My name is %s, and I work in AI and Data Science.", name),
		fmt.Sprintf("You can call me %s! I work in AI and Data Science.", name),
	}
}

func (r *Responder) hometownVariants() []string {
	hometown := stringutil.FirstNonEmpty(r.profile.Location.Hometown, "India")
	return []string{
		fmt.Sprintf("I'm originally from %s.", hometown),
		fmt.Sprintf("My hometown is %s.", hometown),
		fmt.Sprintf("I grew up in %s.", hometown),
	}
}

func (r *Responder) locationVariants() []string {
	current := stringutil.FirstNonEmpty(r.profile.Location.Current, r.profile.Location.Hometown, "India")
	return []string{
		fmt.Sprintf("I'm currently based in %s.", current),
		fmt.Sprintf("Right now I'm living in %s.", current),
		fmt.Sprintf("These days I'm located in %s.", current),
	}
}

func (r *Responder) educationVariants() []string {
	edu := r.profile.Education
	degree := stringutil.FirstNonEmpty(edu.Degree, "a technical degree")
	spec := stringutil.FirstNonEmpty(edu.Specialization, "computing")
	college := stringutil.FirstNonEmpty(edu.College, "college")
	university := stringutil.FirstNonEmpty(edu.University, "university")
	return []string{
		fmt.Sprintf("I'm currently pursuing %s with specialization in %s at %s, %s.", degree, spec, college, university),
		fmt.Sprintf("My current academic pursuit is %s with focus on %s from %s, %s.", degree, spec, college, university),
		fmt.Sprintf("I'm enrolled in the %s program specializing in %s at %s.", degree, spec, college),
	}
}

func (r *Responder) interestsVariants() []string {
	interests := stringutil.JoinNatural(r.profile.Interests, "a variety of topics")
	return []string{
		fmt.Sprintf("I'm particularly interested in: %s.", interests),
		fmt.Sprintf("My professional interests include: %s.", interests),
		fmt.Sprintf("I'm passionate about several areas: %s.", interests),
	}
}

func (r *Responder) languagesVariants() []string {
	languages := stringutil.JoinNatural(r.profile.Languages, "several languages")
	return []string{
		fmt.Sprintf("I'm comfortable communicating in %s.", languages),
		fmt.Sprintf("I can speak %s.", languages),
		fmt.Sprintf("My language skills include %s.", languages),
	}
}

func (r *Responder) skillsVariants() []string {
	technical := stringutil.JoinNatural(r.profile.TechnicalSkills, "various technical skills")
	soft := stringutil.JoinNatural(r.profile.SoftSkills, "various soft skills")
	return []string{
		fmt.Sprintf("On the technical side I work with %s, and my interpersonal skills include %s.", technical, soft),
		fmt.Sprintf("I've developed skills in %s, alongside soft skills like %s.", technical, soft),
		fmt.Sprintf("In terms of professional skills, I excel at %s.", technical),
	}
}

func (r *Responder) toolsVariants() []string {
	tools := stringutil.JoinNatural(r.profile.Tools, "several platforms")
	return []string{
		fmt.Sprintf("In my work, I regularly use tools like: %s.", tools),
		fmt.Sprintf("My technical toolkit includes: %s.", tools),
		fmt.Sprintf("I'm proficient with several platforms: %s.", tools),
	}
}

func (r *Responder) contactVariants() []string {
	c := r.profile.Contact
	linkedin := stringutil.FirstNonEmpty(c.LinkedIn, "LinkedIn")
	github := stringutil.FirstNonEmpty(c.GitHub, "GitHub")
	return []string{
		fmt.Sprintf("Let's connect! You can reach me on LinkedIn: %s or check out my GitHub: %s.", linkedin, github),
		fmt.Sprintf("I'd love to connect with you. Find me on LinkedIn at %s or explore my code on GitHub at %s.", linkedin, github),
		fmt.Sprintf("For professional inquiries, message me on LinkedIn (%s) or check out my GitHub repositories (%s).", linkedin, github),
	}
}

func (r *Responder) experienceVariants() []string {
	if len(r.profile.Experience) == 0 {
		return []string{
			"I'm early in my professional journey, with most of my experience coming from hands-on projects.",
			"My experience so far comes mainly from personal and academic projects.",
		}
	}

	lines := make([]string, 0, len(r.profile.Experience))
	for _, exp := range r.profile.Experience {
		role := stringutil.FirstNonEmpty(exp.Role, "a role")
		company := stringutil.FirstNonEmpty(exp.Company, "a company")
		if exp.Duration != "" {
			lines = append(lines, fmt.Sprintf("%s at %s (%s)", role, company, exp.Duration))
		} else {
			lines = append(lines, fmt.Sprintf("%s at %s", role, company))
		}
	}
	summary := stringutil.JoinNatural(lines, "a few engagements")
	return []string{
		fmt.Sprintf("My work experience so far: %s.", summary),
		fmt.Sprintf("Professionally, I've worked as %s.", summary),
		fmt.Sprintf("Here's where I've worked: %s.", summary),
	}
}

func (r *Responder) certificationsVariants() []string {
	certs := stringutil.JoinNatural(r.profile.Certifications, "a few industry certifications")
	return []string{
		fmt.Sprintf("I've completed these certifications: %s.", certs),
		fmt.Sprintf("My certifications include %s.", certs),
		fmt.Sprintf("On the learning front, I hold %s.", certs),
	}
}

func (r *Responder) tradingVariants() []string {
	t := r.profile.TradingExperience
	years := stringutil.FirstNonEmpty(t.Years, "a couple of")
	markets := stringutil.JoinNatural(t.Markets, "the markets")
	return []string{
		fmt.Sprintf("I've been trading for %s years, mostly in %s.", years, markets),
		fmt.Sprintf("Trading is a side passion of mine, with %s years of experience across %s.", years, markets),
		fmt.Sprintf("I have %s years of market experience, focused on %s.", years, markets),
	}
}

func (r *Responder) helpReply() string {
	return "I can tell you about " + r.profile.DisplayName() +
		"'s education, skills, projects, interests, and contact information. What would you like to know?"
}

func (r *Responder) unknownVariants() []string {
	name := r.profile.DisplayName()
	return []string{
		"I'm not entirely sure I understand. Could you try asking about " + name + "'s education, skills, or projects?",
		"I'm still learning! Try asking about " + name + "'s professional background, education, or technical skills.",
		"That's an interesting question. I'm better equipped to discuss " + name + "'s professional qualifications and experience.",
	}
}

// ApologyReply is the fixed user-safe response for unexpected failures.
func (r *Responder) ApologyReply() string {
	return "I'm sorry, something went wrong on my end. Please try asking that again."
}

func lowerFirst(s string) string {
	runes := []rune(s)
	if len(runes) == 0 {
		return s
	}
	runes[0] = unicode.ToLower(runes[0])
	return string(runes)
}
