package normalizer

import "strings"

// indonesianStopwords is the common function-word list for Bahasa Indonesia
// news text.
const indonesianStopwords = `
ada adalah adanya agak agar akan akankah akhirnya aku akulah amat amatlah
anda andalah antar antara antaranya apa apaan apabila apakah apalagi apatah
atau ataukah ataupun bagai bagaikan bagaimana bagaimanakah bagi bahkan bahwa
bahwasanya banyak beberapa begini beginilah begitu begitulah belum belumlah
benar berapa berbagai berikut berkata bersama betul biasa biasanya bila
bilakah bisa boleh bukan bukankah bukanlah bukannya cukup dahulu dalam dan
dapat dari daripada dekat demi demikian dengan depan di dia dialah diri
dirinya disini disinilah dua ditanya ia ialah ini inikah inilah itu itukah
itulah jadi jangan janganlah jika jikalau juga justru kala kalau kalaulah
kalaupun kalian kami kamilah kamu kamulah kan kapan kapankah karena karenanya
ke kecil kemudian kenapa kepada kepadanya ketika khususnya kini kinilah kira
kita kitalah lagi lagian lah lain lainnya lalu lama lebih macam maka makanya
makin malah malahan mampu mana manakala manalagi masih masing mau maupun
melainkan melakukan melalui memang mengapa menjadi menurut merasa mereka
merekalah meski meskipun mungkin namun nanti nantinya nyaris oleh olehnya
pada padahal padanya para pasti per perlu pernah pula pun punya rasa saat
saja sajalah saling sama sambil sampai sana sangat sangatlah saya sayalah se
sebab sebabnya sebagai sebagaimana sebagainya sebaliknya sebanyak sebelum
sebelumnya sebenarnya sebuah secara sedang sedangkan sedikit segala sehingga
sejak sekali sekalipun sekarang seketika selain selalu selama seluruh
semakin sementara semua semuanya sendiri seolah seorang sepanjang seperti
sering serta sesuatu sesudah setelah setiap siapa siapakah sini situ suatu
sudah sudahlah supaya tadi tadinya tak tanpa tapi telah tengah tentang
tentu tentulah terhadap terlalu tersebut tetapi tiap tidak tidakkah tidaklah
toh untuk waduh wah wahai walau walaupun yaitu yakni yang
`

const englishStopwords = `
a about above after again against all am an and any are as at be because been
before being below between both but by can could did do does doing down during
each few for from further had has have having he her here hers herself him
himself his how i if in into is it its itself just me more most my myself no
nor not now of off on once only or other our ours ourselves out over own same
she should so some such than that the their theirs them themselves then there
these they this those through to too under until up very was we were what
when where which while who whom why will with would you your yours yourself
yourselves
`

// StopwordsFor returns a fresh stopword set for language. Languages without
// a built-in list get an empty set; callers add their own via ExtraStopwords.
func StopwordsFor(language string) map[string]struct{} {
	var list string
	switch language {
	case "indonesian", "":
		list = indonesianStopwords
	case "english":
		list = englishStopwords
	}
	words := strings.Fields(list)
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}
