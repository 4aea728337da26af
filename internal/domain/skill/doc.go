// Package skill содержит журнал прогресса навыков пользователя.
//
// Для каждой пары (пользователь, навык) хранится:
//
//   - Progress - процент освоения, всегда в диапазоне [0, 100]
//   - ExperiencePoints - накопленный опыт, никогда не уменьшается
//   - Milestones - достигнутые пороги из {25, 50, 75, 100} с датой достижения
//
// # Пороги
//
// Каждый порог записывается не более одного раза. Первое пересечение порога
// возвращается из Apply, и прикладной слой выдаёт за него достижение
// типа skill с именем MilestoneAchievementName:
//
//	p := NewProgress("alice", "Python", now)
//	crossed := p.Apply(30, 60, now) // crossed == []int{25}
//	name := MilestoneAchievementName("Python", 25) // "Python - 25% Complete"
//
// Повторный вызов с тем же прогрессом порогов не возвращает.
package skill
