package document

import "github.com/kemalcalak/Resume-Builder/internal/database"

func str(v string) *string { return &v }

// FillSample stages a complete example resume on the draft. It is used to seed
// demo accounts and gives the preview something realistic to lay out.
func FillSample(d *Draft) {
	d.SetThemeColor(DefaultThemeColor)
	d.SetSummary("Experienced software engineer with a passion for developing innovative programs " +
		"that expedite the efficiency and effectiveness of organizational success. Proficient in " +
		"both front-end and back-end development, with a focus on building scalable web " +
		"applications and improving user experience.")

	d.SetPersonalInfo(PersonalInfoPatch{
		FirstName: str("Sarah"),
		LastName:  str("Johnson"),
		JobTitle:  str("Software Engineer"),
		Address:   str("1234 Elm Street, CA 90210"),
		Phone:     str("(987)-654-3210"),
		Email:     str("sarah.johnson@example.com"),
		Website:   str("sarahjohnson.com"),
		Linkedin:  str("sarahjohnson"),
		Github:    str("sarahjohnson"),
		Medium:    str("sarahjohnson"),
	})

	d.SetExperiences([]database.Experience{
		{
			Title:            "Software Engineer",
			CompanyName:      "Microsoft",
			City:             "San Francisco",
			State:            "CA",
			StartDate:        "Feb 2022",
			CurrentlyWorking: true,
			WorkSummary: "<ul><li>Developed scalable web applications using React, TypeScript, and Node.js.</li>" +
				"<li>Collaborated with cross-functional teams to design, implement, and maintain new features.</li>" +
				"<li>Optimized performance of applications, reducing load times by 30%.</li></ul>",
		},
		{
			Title:       "Frontend Developer",
			CompanyName: "Facebook",
			City:        "Menlo Park",
			State:       "CA",
			StartDate:   "Aug 2019",
			EndDate:     "Jan 2022",
			WorkSummary: "<ul><li>Designed and developed high-performance user interfaces using React and Redux.</li>" +
				"<li>Implemented responsive design techniques for optimal viewing on all devices.</li>" +
				"<li>Mentored junior developers and conducted code reviews.</li></ul>",
		},
	})

	d.SetEducations([]database.Education{
		{
			UniversityName: "Stanford University",
			StartDate:      "Sep 2017",
			EndDate:        "Jun 2019",
			Degree:         "Master's",
			Major:          "Computer Science",
			Description:    "Focus on software engineering and systems architecture, specializing in scalable web applications and distributed systems.",
		},
		{
			UniversityName: "University of California, Berkeley",
			StartDate:      "Sep 2013",
			EndDate:        "Jun 2017",
			Degree:         "Bachelor's",
			Major:          "Computer Science",
			Description:    "Coursework in algorithms, data structures and software engineering, with hands-on coding projects and internships.",
		},
	})

	d.SetProjects([]database.Project{
		{
			ProjectName:    "Portfolio Website",
			ProjectSummary: "Personal portfolio to showcase projects, skills and experience. Built with React, Next.js and Tailwind CSS.",
			StartDate:      "Jan 2022",
			EndDate:        "Feb 2022",
		},
		{
			ProjectName:    "Task Management App",
			ProjectSummary: "Tracks projects, deadlines and progress. Built with React, Redux and Firebase.",
			StartDate:      "Apr 2021",
			EndDate:        "Jun 2021",
		},
	})

	d.SetCertificates([]database.Certificate{
		{CertificateName: "AWS Certified Solutions Architect", WhoGave: "Amazon Web Services", Teacher: "John Doe", IssueDate: "Jul 2021"},
		{CertificateName: "Web development", WhoGave: "Udemy", Teacher: "Kemal Calak", IssueDate: "Jul 2024"},
	})
}
