package quiz

// Category groups the questions scored together.
type Category string

const (
	CategoryPolitics Category = "政治"
	CategoryGender   Category = "性別"
	CategoryOpenness Category = "開放性"
)

var Categories = []Category{CategoryPolitics, CategoryGender, CategoryOpenness}

type Question struct {
	ID        string   `json:"id"`
	Question  string   `json:"question"`
	Category  Category `json:"category"`
	IsReverse bool     `json:"is_reverse"` // agreement counts towards the negative side
}

type Option struct {
	Label string `json:"label"`
	Score int    `json:"score"`
}

var Options = []Option{
	{Label: "強烈反對", Score: -5},
	{Label: "反對", Score: -3},
	{Label: "略為反對", Score: -1},
	{Label: "基本同意", Score: 1},
	{Label: "同意", Score: 3},
	{Label: "非常同意", Score: 5},
}

var Questions = []Question{
	{ID: "p_l1", Category: CategoryPolitics, IsReverse: false, Question: "對進口商品徵收關稅是保護國內就業的好方法"},
	{ID: "p_l2", Category: CategoryPolitics, IsReverse: false, Question: "政府必須比現在更努力地重新分配財富"},
	{ID: "p_l3", Category: CategoryPolitics, IsReverse: false, Question: "道路、電力等公共設施必須由政府營運"},
	{ID: "p_l4", Category: CategoryPolitics, IsReverse: false, Question: "政府應該對高階主管的薪酬設定上限"},
	{ID: "p_l5", Category: CategoryPolitics, IsReverse: false, Question: "勞動所得利潤比股票所得利潤更合理"},
	{ID: "p_l6", Category: CategoryPolitics, IsReverse: false, Question: "應該對以投資而非居住為目的的房地產購買進行監管"},
	{ID: "p_l7", Category: CategoryPolitics, IsReverse: false, Question: "無論病情輕重，經濟條件好的人不應該更容易獲得更好的醫療保健服務"},
	{ID: "p_l8", Category: CategoryPolitics, IsReverse: false, Question: "只要有工作，無論工作表現如何，都應該有最低收入保障"},

	{ID: "p_r1", Category: CategoryPolitics, IsReverse: true, Question: "與其政府制定政策，不如交給自由市場"},
	{ID: "p_r2", Category: CategoryPolitics, IsReverse: true, Question: "我不想生活在一個人人收入都一樣的國家"},
	{ID: "p_r3", Category: CategoryPolitics, IsReverse: true, Question: "我不應該為那些與我無關的公共工程項目繳納稅款"},
	{ID: "p_r4", Category: CategoryPolitics, IsReverse: true, Question: "競爭通常會讓世界變得更美好"},
	{ID: "p_r5", Category: CategoryPolitics, IsReverse: true, Question: "多數決通常會做出錯誤的決定"},
	{ID: "p_r6", Category: CategoryPolitics, IsReverse: true, Question: "貧窮的責任主要在於自己"},
	{ID: "p_r7", Category: CategoryPolitics, IsReverse: true, Question: "透過繼承獲得財富是合法的"},
	{ID: "p_r8", Category: CategoryPolitics, IsReverse: true, Question: "優先考慮經濟成長的政策比優先考慮福利的政策更有助於擺脫貧困"},

	{ID: "g_f1", Category: CategoryGender, IsReverse: false, Question: "如果女性主導世界歷史，暴力和戰爭將會少得多"},
	{ID: "g_f2", Category: CategoryGender, IsReverse: false, Question: "政府必須為女性分配一定比例的公職"},
	{ID: "g_f3", Category: CategoryGender, IsReverse: false, Question: "在「女演員」、「女詩人」、「女記者」等職業名稱前加上性別標籤，是貶低女性的一種方式"},
	{ID: "g_f4", Category: CategoryGender, IsReverse: false, Question: "政府應該對女性在男性主導的高收入職業(例如企業主管)中實施配額制度"},
	{ID: "g_f5", Category: CategoryGender, IsReverse: false, Question: "以身穿內衣或泳裝的女性模特為主角的性感寫真，是女性權利成就的倒退"},
	{ID: "g_f6", Category: CategoryGender, IsReverse: false, Question: "企業在晉升考核時，應主動扣除女性因懷育、產假而損失的工時權重，以確保她們不會因為生理功能而在職業生涯中落後。"},
	{ID: "g_f7", Category: CategoryGender, IsReverse: false, Question: "影視作品若存在過度的『男性救世主』情節或將女性描繪為脆弱客體，即便不違法，也應受到社會輿論與補助政策的抵制。"},
	{ID: "g_f8", Category: CategoryGender, IsReverse: false, Question: "在家庭中，女性通常承擔更多的『情緒勞動』（如照顧親戚關係、安排家務細節），這類勞動在離婚財產分配時應獲得高額的經濟補償。"},

	{ID: "g_e1", Category: CategoryGender, IsReverse: true, Question: "在當今台灣社會，女性在許多方面比男性生活得更舒適"},
	{ID: "g_e2", Category: CategoryGender, IsReverse: true, Question: "性別薪資差距是個謬論，女性從事相同工作早已獲得同等報酬"},
	{ID: "g_e3", Category: CategoryGender, IsReverse: true, Question: "因為男女之間的差異是顯而易見的，所以讓他們扮演不同的社會角色並互補是理想的"},
	{ID: "g_e4", Category: CategoryGender, IsReverse: true, Question: "在資本主義市場中，男性的能力通常比女性的能力更有價值"},
	{ID: "g_e5", Category: CategoryGender, IsReverse: true, Question: "如果男性的平均薪資高於女性，那是因為男性的公作表現較好"},
	{ID: "g_e6", Category: CategoryGender, IsReverse: true, Question: "如果女性要求與男性平等的社會地位，那她們也應該像男性一樣承擔義務役的國防職責。"},
	{ID: "g_e7", Category: CategoryGender, IsReverse: true, Question: "目前的社會氛圍過度保護女性，反而導致男性在錄取或社會輿論中，成為了新的弱勢群體。"},
	{ID: "g_e8", Category: CategoryGender, IsReverse: true, Question: "如果女性可以請生理假，那男性也應該擁有等額的『心理健康假』或『體能恢復假』，以維持職場競爭起跑點的公平。"},

	{ID: "o_t1", Category: CategoryOpenness, IsReverse: true, Question: "對於正直無私的人來說，政府的監視其實可以起到保護作用"},
	{ID: "o_t2", Category: CategoryOpenness, IsReverse: true, Question: "來到台灣的移民，應想盡辦法融入台灣文化"},
	{ID: "o_t3", Category: CategoryOpenness, IsReverse: true, Question: "在我們的社會裡，死刑是必要的"},
	{ID: "o_t4", Category: CategoryOpenness, IsReverse: true, Question: "我無法認同殘疾人在交通高峰期抗議並造成阻礙的行為"},
	{ID: "o_t5", Category: CategoryOpenness, IsReverse: true, Question: "必須盡可能減少進入我國的移民人數"},
	{ID: "o_t6", Category: CategoryOpenness, IsReverse: true, Question: "為了團隊合作，我們都必須一起參加公司聚餐，即使我們不想去"},
	{ID: "o_t7", Category: CategoryOpenness, IsReverse: true, Question: "美國對黑人的歧視並非毫無道理"},
	{ID: "o_t8", Category: CategoryOpenness, IsReverse: true, Question: "即使是反抗獨裁統治，也絕對不能容忍暴力"},

	{ID: "o_o1", Category: CategoryOpenness, IsReverse: false, Question: "同性伴侶應該享有和異性伴侶相同的權利，包括結婚和收養的權利"},
	{ID: "o_o2", Category: CategoryOpenness, IsReverse: false, Question: "所有餐廳都應該盡可能提供至少一份素食菜單"},
	{ID: "o_o3", Category: CategoryOpenness, IsReverse: false, Question: "在穆斯林人口眾多的地區，地方政府需要根據伊斯蘭教法支持清真食品認證系統"},
	{ID: "o_o4", Category: CategoryOpenness, IsReverse: false, Question: "在廣播節目中加入手語翻譯是保護聾人權利的自然措施，應該在所有廣播節目中以更大的圖顯示"},
	{ID: "o_o5", Category: CategoryOpenness, IsReverse: false, Question: "為了促進社會平等，在重新詮釋經典文化作品時，應優先考慮加入少數族裔元素，即便這會改變作品原本的樣貌。"},
	{ID: "o_o6", Category: CategoryOpenness, IsReverse: false, Question: "為了讓下一代擁有更好的健康或智力，父母應該有權透過基因編輯技術來挑選胎兒的特徵。"},
	{ID: "o_o7", Category: CategoryOpenness, IsReverse: false, Question: "性交易與大麻等軟性毒品應該全面合法化並由政府納稅管理，而非一味禁止。"},
	{ID: "o_o8", Category: CategoryOpenness, IsReverse: false, Question: "即便在公共場合裸露身體（如母乳哺育或特定的藝術表達），也是個人自由的一部分，政府不應以『妨害風化』為由干預。"},
}
