package domain

import "strings"

// Honorifics matched as plain substrings of the full name. Some entries
// (CEO, Presidente, Major, ...) appear in both lists; male titles are checked
// first and therefore win.
var (
	maleTitles = []string{
		"Sr.", "Senhor", "Mr.", "Dr.", "Doutor", "Prof.", "Professor", "Mestre", "Rev.", "Reverendo",
		"Pe.", "Padre", "Cônego", "Mons.", "Monsenhor", "Bispo", "Arcebispo", "Cardeal", "Papa",
		"Eng.", "Engenheiro", "Arq.", "Arquiteto", "Adv.", "Advogado", "Des.", "Desembargador",
		"Min.", "Ministro", "Pres.", "Presidente", "Gov.", "Governador", "Dep.", "Deputado",
		"Sen.", "Senador", "Ver.", "Vereador", "Cel.", "Coronel", "Cap.", "Capitão", "Maj.", "Major",
		"Gen.", "General", "Alm.", "Almirante", "Cmd.", "Comandante", "Dir.", "Diretor",
		"Coord.", "Coordenador", "Superint.", "Superintendente", "CEO", "CFO", "COO", "CTO",
		"Dom", "Príncipe", "Rei", "Barão", "Conde", "Duque", "Marquês", "Sir", "Lord",
	}

	femaleTitles = []string{
		"Sra.", "Senhora", "Mrs.", "Miss", "Ms.", "Dra.", "Doutora", "Profa.", "Professora",
		"Mestra", "Revda.", "Reverenda", "Madre", "Irmã", "Cônega", "Bispa", "Arcebispa",
		"Enga.", "Engenheira", "Arqa.", "Arquiteta", "Adva.", "Advogada", "Desa.", "Desembargadora",
		"Mina.", "Ministra", "Presa.", "Presidente", "Gova.", "Governadora", "Depa.", "Deputada",
		"Sena.", "Senadora", "Vera.", "Vereadora", "Cela.", "Coronela", "Capa.", "Capitã",
		"Maja.", "Major", "Gena.", "General", "Alma.", "Almirante", "Cmda.", "Comandante",
		"Dira.", "Diretora", "Coorda.", "Coordenadora", "Superinta.", "Superintendente",
		"CEO", "CFO", "COO", "CTO", "Dona", "Princesa", "Rainha", "Baronesa", "Condessa",
		"Duquesa", "Marquesa", "Lady", "Madame",
	}
)

// SexFromTitle infers a sex code from an honorific contained in name.
// ok is false when no title matches.
func SexFromTitle(name string) (sex Sex, ok bool) {
	if containsAny(name, maleTitles) {
		return SexMale, true
	}

	if containsAny(name, femaleTitles) {
		return SexFemale, true
	}

	return "", false
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}

	return false
}
