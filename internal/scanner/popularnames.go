package scanner

// PopularPackageNames is the bundled popular-name list used by the
// Typosquatting Scanner (§4.8) and loaded once at startup (§6 "Bundled
// data files"). Grounded on the teacher's internal/analyzer/typosquat.go
// popularPackages table, extended with a handful of additional ecosystem
// staples so the candidate set is large enough to exercise the scorer's
// scenarios in §8.
var PopularPackageNames = []string{
	"express", "react", "react-dom", "angular", "vue", "lodash", "axios",
	"moment", "webpack", "babel", "typescript", "eslint", "prettier",
	"jest", "mocha", "chai", "next", "nuxt", "svelte",
	"underscore", "jquery", "bootstrap", "tailwindcss",
	"commander", "chalk", "inquirer", "yargs", "minimist",
	"request", "node-fetch", "got", "superagent",
	"mongoose", "sequelize", "knex", "prisma",
	"socket.io", "ws", "rxjs", "ramda",
	"debug", "dotenv", "uuid", "nanoid",
	"semver", "glob", "fs-extra", "rimraf", "mkdirp",
	"colors", "yaml", "dayjs", "zod", "vite",
	"@angular/core", "@angular/cli", "@types/node",
	"@babel/core", "@babel/preset-env",
	"@nestjs/core", "@nestjs/common",
	"@testing-library/react", "@testing-library/jest-dom",
}
