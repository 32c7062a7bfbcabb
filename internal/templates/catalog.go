package templates

// Fallback is the industry whose list serves unknown industry labels.
const Fallback = "General/Other"

// ProblemStatement is the anchor section every generated document starts with.
const ProblemStatement = "Problem Statement"

// Industries in display order. Fallback is last.
var industryOrder = []string{
	"Technology/SaaS",
	"E-commerce",
	"Healthcare",
	"Finance/Fintech",
	"Education",
	"Retail",
	"Manufacturing",
	"Media & Entertainment",
	Fallback,
}

func defaultSections() map[string][]string {
	return map[string][]string{
		"Technology/SaaS": {
			ProblemStatement,
			"Research Objectives",
			"Target User Personas",
			"Competitive Landscape",
			"User Journey Mapping",
			"Feature Prioritization",
			"Technical Feasibility",
			"Adoption and Retention Metrics",
			"Pricing Strategy",
			"Key Findings",
			"Recommendations",
		},
		"E-commerce": {
			ProblemStatement,
			"Research Objectives",
			"Target User Personas",
			"Customer Journey Analysis",
			"Cart Abandonment Insights",
			"Conversion Funnel Metrics",
			"Competitive Landscape",
			"Pricing and Promotions",
			"Fulfillment and Returns",
			"Key Findings",
			"Recommendations",
		},
		"Healthcare": {
			ProblemStatement,
			"Research Objectives",
			"Patient Personas",
			"Clinical Workflow Analysis",
			"Regulatory and Compliance Considerations",
			"Stakeholder Mapping",
			"Care Outcome Metrics",
			"Data Privacy and Security",
			"Key Findings",
			"Recommendations",
		},
		"Finance/Fintech": {
			ProblemStatement,
			"Research Objectives",
			"Customer Segments",
			"Regulatory Landscape",
			"Risk Assessment",
			"Trust and Security Perceptions",
			"Competitive Landscape",
			"Transaction Metrics",
			"Key Findings",
			"Recommendations",
		},
		"Education": {
			ProblemStatement,
			"Research Objectives",
			"Learner Personas",
			"Educator Perspectives",
			"Learning Outcomes Analysis",
			"Engagement Metrics",
			"Accessibility Considerations",
			"Key Findings",
			"Recommendations",
		},
		"Retail": {
			ProblemStatement,
			"Research Objectives",
			"Shopper Personas",
			"In-Store Experience Analysis",
			"Omnichannel Journey",
			"Inventory and Merchandising",
			"Competitive Landscape",
			"Sales Performance Metrics",
			"Key Findings",
			"Recommendations",
		},
		"Manufacturing": {
			ProblemStatement,
			"Research Objectives",
			"Operator Personas",
			"Process Flow Analysis",
			"Supply Chain Considerations",
			"Quality and Defect Metrics",
			"Safety and Compliance",
			"Cost Analysis",
			"Key Findings",
			"Recommendations",
		},
		"Media & Entertainment": {
			ProblemStatement,
			"Research Objectives",
			"Audience Personas",
			"Content Consumption Patterns",
			"Engagement Metrics",
			"Monetization Models",
			"Competitive Landscape",
			"Key Findings",
			"Recommendations",
		},
		Fallback: {
			ProblemStatement,
			"Research Objectives",
			"Target User Personas",
			"Methodology",
			"Market Context",
			"Competitive Landscape",
			"Key Metrics",
			"Key Findings",
			"Implications",
			"Recommendations",
		},
	}
}

func defaultGuidance() map[string]string {
	return map[string]string{
		ProblemStatement:                           "Restate the core problem, who experiences it, and why it matters now.",
		"Research Objectives":                      "List the specific questions this research must answer and how success will be measured.",
		"Target User Personas":                     "Describe two or three named personas with goals, frustrations and behaviours.",
		"Patient Personas":                         "Describe named patient personas with conditions, care goals and barriers to access.",
		"Learner Personas":                         "Describe named learner personas with motivations, skill levels and obstacles.",
		"Shopper Personas":                         "Describe named shopper personas with buying habits, channels and price sensitivity.",
		"Operator Personas":                        "Describe named operator personas with responsibilities, tools and pain points on the floor.",
		"Audience Personas":                        "Describe named audience personas with viewing habits, platforms and preferences.",
		"Customer Segments":                        "Break the customer base into segments with size, needs and financial behaviour.",
		"Competitive Landscape":                    "Compare the main competitors and alternatives, including strengths, gaps and positioning.",
		"User Journey Mapping":                     "Map the end-to-end user journey, calling out friction points at each stage.",
		"Customer Journey Analysis":                "Trace the purchase journey from discovery to delivery and where customers drop off.",
		"Cart Abandonment Insights":                "Quantify cart abandonment by step, list the leading causes and the evidence behind each.",
		"Conversion Funnel Metrics":                "Report conversion rates for each funnel stage with baselines and targets.",
		"Feature Prioritization":                   "Rank candidate features by user value and effort with a short rationale for each.",
		"Technical Feasibility":                    "Assess technical constraints, dependencies and delivery risks.",
		"Adoption and Retention Metrics":           "Define activation, retention and churn metrics with current values and goals.",
		"Pricing Strategy":                         "Evaluate pricing models and willingness to pay across segments.",
		"Pricing and Promotions":                   "Analyse pricing, discounting and promotion effects on purchase behaviour.",
		"Fulfillment and Returns":                  "Examine shipping options, delivery expectations and return policies.",
		"Clinical Workflow Analysis":               "Describe how clinicians work today and where the problem disrupts care delivery.",
		"Regulatory and Compliance Considerations": "Identify applicable regulations and what they require of the solution.",
		"Regulatory Landscape":                     "Summarise the regulations and licensing requirements that shape the product.",
		"Stakeholder Mapping":                      "Identify stakeholders, their influence and what each needs from the outcome.",
		"Care Outcome Metrics":                     "Define the clinical and experience outcomes to track with baseline values.",
		"Data Privacy and Security":                "Describe data handling obligations and the security controls required.",
		"Risk Assessment":                          "List the key financial, operational and compliance risks with likelihood and impact.",
		"Trust and Security Perceptions":           "Report how users perceive the safety of their money and data.",
		"Transaction Metrics":                      "Report transaction volumes, values, failure rates and trends.",
		"Educator Perspectives":                    "Summarise what teachers and instructors need and where current tools fall short.",
		"Learning Outcomes Analysis":               "Measure learning outcomes and the factors that drive them.",
		"Engagement Metrics":                       "Define engagement measures with current values and benchmarks.",
		"Accessibility Considerations":             "Identify accessibility needs and the accommodations required.",
		"In-Store Experience Analysis":             "Describe the physical store experience and where shoppers struggle.",
		"Omnichannel Journey":                      "Trace how shoppers move between online and offline channels.",
		"Inventory and Merchandising":              "Analyse stock availability, assortment and merchandising effects on sales.",
		"Sales Performance Metrics":                "Report sales, basket size and margin metrics with trends.",
		"Process Flow Analysis":                    "Map the production process and identify bottlenecks and waste.",
		"Supply Chain Considerations":              "Examine suppliers, lead times and supply risks.",
		"Quality and Defect Metrics":               "Report defect rates, yield and quality trends.",
		"Safety and Compliance":                    "Identify safety hazards and compliance obligations.",
		"Cost Analysis":                            "Break down the costs involved and the savings opportunities.",
		"Content Consumption Patterns":             "Describe what, when and how audiences consume content.",
		"Monetization Models":                      "Compare subscription, advertising and transactional revenue options.",
		"Methodology":                              "Describe the research methods, sample sizes and data sources.",
		"Market Context":                           "Summarise market size, growth and the trends shaping the problem.",
		"Key Metrics":                              "Define the metrics that will show whether the problem is being solved.",
		"Key Findings":                             "Synthesise the most important findings from the preceding sections.",
		"Implications":                             "Explain what the findings mean for the product and the business.",
		"Recommendations":                          "Give prioritised, actionable recommendations tied to specific findings.",
	}
}
