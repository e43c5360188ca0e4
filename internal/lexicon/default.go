package lexicon

var defaultCategories = []Category{
	{
		Name:     "programming",
		Keywords: []string{"python", "java", "javascript", "typescript", "c++", "c#", "ruby", "go", "rust", "php", "swift", "kotlin"},
	},
	{
		Name:     "web",
		Keywords: []string{"react", "angular", "vue", "nextjs", "nodejs", "express", "django", "flask", "fastapi", "html", "css", "tailwind"},
	},
	{
		Name:     "database",
		Keywords: []string{"sql", "mysql", "postgresql", "mongodb", "redis", "elasticsearch", "dynamodb", "cassandra"},
	},
	{
		Name:     "cloud",
		Keywords: []string{"aws", "azure", "gcp", "docker", "kubernetes", "terraform", "jenkins", "ci/cd"},
	},
	{
		Name:     "data",
		Keywords: []string{"pandas", "numpy", "tensorflow", "pytorch", "scikit-learn", "spark", "hadoop", "tableau", "powerbi"},
	},
	{
		Name:     "tools",
		Keywords: []string{"git", "jira", "agile", "scrum", "rest", "graphql", "api", "microservices"},
	},
}
