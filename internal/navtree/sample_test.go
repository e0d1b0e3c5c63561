package navtree

// sampleTree mirrors the navigation index generated for the Dura2D docs.
func sampleTree() *Tree {
	md := func(label string, n int, children ...*Node) *Node {
		link := "index.html#" + AutoTOCAnchor(n)
		if len(children) == 0 {
			return Leaf(label, link)
		}
		return Group(label, link, children...)
	}

	root := Group("Dura2D", "index.html",
		md("🚀 Introduction", 1),
		md("🌟 Features", 2),
		md("📦 Installation", 3,
			md("CPM.cmake (Recommended)", 4),
			md("Vendored", 5,
				md("Git Submodule", 6),
				md("Git Subtree", 7),
			),
		),
		md("🎮 Usage", 8),
		md("⚒️ Building", 9,
			md("Prerequisites", 10),
			md("Cloning the Repository", 11),
			md("Dura2D Library", 12, md("CMake Options", 13)),
			md("Testbed", 14, md("Web Builds for Testbed", 15)),
			md("Running Unit Tests", 16),
			md("Generating Documentation", 17),
			md("Additional Notes", 18),
		),
		md("🛣️ Roadmap", 19),
		md("🤝 Contributing", 20),
		md("🙏 Acknowledgements", 21),
		Group("Classes", "annotated.html",
			Deferred("Class List", "annotated.html", "annotated_dup"),
			Leaf("Class Index", "classes.html"),
			Deferred("Class Hierarchy", "hierarchy.html", "hierarchy"),
			Group("Class Members", "functions.html",
				Deferred("All", "functions.html", "functions_dup"),
				Deferred("Functions", "functions_func.html", "functions_func"),
				Leaf("Variables", "functions_vars.html"),
				Leaf("Typedefs", "functions_type.html"),
				Leaf("Enumerator", "functions_eval.html"),
				Leaf("Related Symbols", "functions_rela.html"),
			),
		),
		Group("Files", "files.html",
			Deferred("File List", "files.html", "files_dup"),
			Group("File Members", "globals.html",
				Leaf("All", "globals.html"),
				Leaf("Functions", "globals_func.html"),
				Leaf("Variables", "globals_vars.html"),
				Leaf("Typedefs", "globals_type.html"),
				Leaf("Enumerations", "globals_enum.html"),
				Leaf("Enumerator", "globals_eval.html"),
				Leaf("Macros", "globals_defs.html"),
			),
		),
	)

	return &Tree{
		Root:     root,
		Index:    []string{"annotated.html", "functions_func_n.html"},
		Messages: DefaultMessages(),
	}
}
