package resume

// Sample 返回模板展示页使用的示例简历，每次调用返回新的副本。
func Sample() Record {
	return Record{
		TemplateID: "modern",
		Title:      "Sample Resume",
		FirstName:  "John",
		LastName:   "Doe",
		JobTitle:   "Software Developer",
		City:       "New York",
		Country:    "USA",
		Phone:      "(555) 123-4567",
		Email:      "john.doe@email.com",
		Summary:    "Experienced software developer with expertise in modern web technologies. Passionate about creating efficient and scalable solutions.",
		WorkExperiences: []WorkExperience{
			{
				Position:    "Senior Software Developer",
				Company:     "Tech Corp",
				StartDate:   "2022-01",
				Description: "Led development of web applications using React and Node.js",
			},
			{
				Position:    "Software Developer",
				Company:     "StartupXYZ",
				StartDate:   "2020-06",
				EndDate:     "2021-12",
				Description: "Developed responsive web applications and REST APIs",
			},
		},
		Educations: []Education{
			{
				Degree:    "Bachelor of Computer Science",
				School:    "University of Technology",
				StartDate: "2016-09",
				EndDate:   "2020-05",
			},
		},
		Skills:      []string{"React", "Node.js", "TypeScript", "JavaScript", "Python", "AWS"},
		ColorHex:    "#3b82f6",
		BorderStyle: BorderSquircle,
	}
}
